package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/storefront"
)

// HandlePaymentNotification handles POST /v1/payments
func HandlePaymentNotification(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req storefront.PaymentNotification
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		if !req.Status.IsValid() {
			c.JSON(http.StatusUnprocessableEntity, storefront.ErrorResponse{
				Error:   "validation failed",
				Details: []domain.FieldError{{Field: "status", Message: "status must be one of PAID, FAILED, REFUNDED"}},
			})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		payment, err := orderService.RecordPayment(c.Request.Context(), req)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to record payment")
			return
		}

		logger.Info("Payment recorded",
			zap.String("reference", payment.Reference),
			zap.String("order_id", payment.OrderID.String()),
			zap.String("status", string(payment.Status)),
		)

		c.JSON(http.StatusOK, toPaymentConfirmation(payment))
	}
}

// HandleGetPayment handles GET /v1/payments/:reference
func HandleGetPayment(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderService := service.NewOrderService(repos, logger)
		payment, err := orderService.GetPayment(c.Request.Context(), c.Param("reference"))
		if err != nil {
			respondServiceError(c, logger, err, "Failed to get payment")
			return
		}

		c.JSON(http.StatusOK, toPaymentConfirmation(payment))
	}
}
