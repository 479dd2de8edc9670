package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/storefront"
)

// HandleAttachItem handles POST /v1/order-items
func HandleAttachItem(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req storefront.AttachItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		// binding already checked the format
		orderID := uuid.MustParse(req.OrderID)

		orderService := service.NewOrderService(repos, logger)
		item, err := orderService.AttachItem(c.Request.Context(), orderID, req.ProductID, req.Quantity)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to attach order item")
			return
		}

		c.JSON(http.StatusCreated, storefront.AttachItemResponse{
			ID:      item.ID.String(),
			OrderID: item.OrderID.String(),
		})
	}
}
