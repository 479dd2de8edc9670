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

// HandleCreateOrder handles POST /v1/orders
func HandleCreateOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req storefront.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, err := orderService.CreateOrder(c.Request.Context(), req)
		if err != nil {
			respondCreateOrderError(c, logger, err)
			return
		}

		logger.Info("Order created",
			zap.String("order_id", order.ID.String()),
			zap.String("checkout_token", order.CheckoutToken),
			zap.Int64("total", order.Total),
		)

		c.JSON(http.StatusCreated, storefront.CreateOrderResponse{
			ID:     order.ID.String(),
			Status: order.Status,
		})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, items, err := orderService.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to get order")
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order, items))
	}
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, storefront.ErrorResponse{Error: "invalid order ID"})
		return uuid.Nil, false
	}
	return orderID, true
}
