package routes

import (
	"payment_records/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPayments = "/payments"
)

func addPaymentRoutes(router *gin.Engine, h *handlers.PaymentHandler) {
	payments := router.Group(PathPayments)
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id/status", h.UpdatePaymentStatus)
		payments.DELETE("/:id", h.DeletePayment)
	}
}
