package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/storefront"
)

// HandleReconcileOrder handles POST /v1/orders/:id/reconcile
func HandleReconcileOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}

		var req storefront.ReconcileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, err := orderService.FlagReconciliation(c.Request.Context(), orderID, req.FailedProductIDs)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to flag order for reconciliation")
			return
		}

		c.JSON(http.StatusOK, storefront.CreateOrderResponse{
			ID:     order.ID.String(),
			Status: order.Status,
		})
	}
}

// HandleCancelOrder handles POST /v1/orders/:id/cancel
func HandleCancelOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, err := orderService.CancelOrder(c.Request.Context(), orderID)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to cancel order")
			return
		}

		c.JSON(http.StatusOK, storefront.CreateOrderResponse{
			ID:     order.ID.String(),
			Status: order.Status,
		})
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse query parameters
		statusStr := c.Query("status")
		limitStr := c.DefaultQuery("limit", "50")
		offsetStr := c.DefaultQuery("offset", "0")

		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			limit = 50
		}

		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			offset = 0
		}

		status := domain.OrderStatus(statusStr)
		if statusStr != "" && !status.IsValid() {
			c.JSON(http.StatusBadRequest, storefront.ErrorResponse{Error: "invalid status"})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		orders, err := orderService.ListOrders(c.Request.Context(), status, limit, offset)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to list orders")
			return
		}

		orderResponses := make([]storefront.OrderResponse, len(orders))
		for i, order := range orders {
			orderResponses[i] = toOrderResponse(order, nil)
		}

		c.JSON(http.StatusOK, storefront.OrderListResponse{
			Orders: orderResponses,
			Limit:  limit,
			Offset: offset,
		})
	}
}
