package handlers

import (
	"log"
	"net/http"

	"payment_records/internal/usecase"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewHealthHandler(uc usecase.IPaymentUseCase) *HealthHandler {
	return &HealthHandler{usecase: uc}
}

// Ping godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200
// @Router   /ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health godoc
// @Summary  Storage health probe
// @Tags     health
// @Produce  json
// @Success  200
// @Failure  503
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.usecase.Health(c.Request.Context()); err != nil {
		log.Printf("[health][handler] storage unavailable err=%v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
