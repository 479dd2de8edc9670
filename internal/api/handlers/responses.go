package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storefront"
	"github.com/jafarshop/storefront/internal/validation"
	"github.com/jafarshop/storefront/pkg/errors"
)

// respondBindError answers 422 with per-field details for rule failures and
// 400 for bodies that could not be decoded at all.
func respondBindError(c *gin.Context, err error) {
	details := validation.FieldErrors(err)
	if len(details) == 0 {
		c.JSON(http.StatusBadRequest, storefront.ErrorResponse{Error: "invalid request body"})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, storefront.ErrorResponse{
		Error:   "validation failed",
		Details: details,
	})
}

// respondCreateOrderError answers a checkout token collision with the
// dedicated duplicate order body.
func respondCreateOrderError(c *gin.Context, logger *zap.Logger, err error) {
	var conflict *errors.ErrConflict
	if stderrors.As(err, &conflict) {
		c.JSON(http.StatusConflict, storefront.ErrorResponse{Error: "duplicate order"})
		return
	}
	respondServiceError(c, logger, err, "Failed to create order")
}

// respondServiceError maps pkg/errors types to status codes
func respondServiceError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	var (
		notFound   *errors.ErrNotFound
		conflict   *errors.ErrConflict
		transition *errors.ErrInvalidStateTransition
		unauth     *errors.ErrUnauthorized
	)

	switch {
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, storefront.ErrorResponse{Error: notFound.Resource + " not found"})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, storefront.ErrorResponse{Error: conflict.Message})
	case stderrors.As(err, &transition):
		c.JSON(http.StatusConflict, storefront.ErrorResponse{Error: transition.Error()})
	case stderrors.As(err, &unauth):
		c.JSON(http.StatusUnauthorized, storefront.ErrorResponse{Error: unauth.Message})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, storefront.ErrorResponse{Error: "internal error"})
	}
}

func toOrderResponse(order *domain.Order, items []*domain.OrderItem) storefront.OrderResponse {
	itemResponses := make([]storefront.OrderItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = storefront.OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return storefront.OrderResponse{
		ID:               order.ID.String(),
		Status:           order.Status,
		Total:            order.Total,
		Customer:         order.Customer,
		FailedProductIDs: order.FailedProductIDs,
		Items:            itemResponses,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        order.UpdatedAt.Format(time.RFC3339),
	}
}

func toPaymentConfirmation(p *domain.Payment) storefront.PaymentConfirmation {
	return storefront.PaymentConfirmation{
		Reference: p.Reference,
		OrderID:   p.OrderID.String(),
		Status:    p.Status,
		Amount:    p.Amount,
	}
}
