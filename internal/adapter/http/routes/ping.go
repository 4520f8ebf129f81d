package routes

import (
	"payment_records/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

func addPingRoutes(router *gin.Engine, h *handlers.HealthHandler) {
	router.GET("/ping", h.Ping)
	router.GET("/health", h.Health)
}
