package storefront

import (
	"github.com/jafarshop/storefront/internal/domain"
)

// CreateOrderRequest represents the order creation payload
type CreateOrderRequest struct {
	domain.CheckoutForm
	Total         int64  `json:"total" binding:"min=0"`
	CheckoutToken string `json:"checkoutToken" binding:"required"`
}

type CreateOrderResponse struct {
	ID     string             `json:"id"`
	Status domain.OrderStatus `json:"status"`
}

// AttachItemRequest associates one cart line with a created order
type AttachItemRequest struct {
	OrderID   string `json:"orderId" binding:"required,uuid"`
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=1"`
}

type AttachItemResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
}

// ReconcileRequest flags an order whose line items were not all attached
type ReconcileRequest struct {
	FailedProductIDs []string `json:"failedProductIds" binding:"required,min=1"`
}

// PaymentNotification is sent by the payment provider when a payment settles
type PaymentNotification struct {
	Reference string               `json:"reference" binding:"required"`
	OrderID   string               `json:"orderId" binding:"required,uuid"`
	Status    domain.PaymentStatus `json:"status" binding:"required"`
	Amount    int64                `json:"amount" binding:"min=0"`
}

// PaymentConfirmation is the server's view of a payment reference
type PaymentConfirmation struct {
	Reference string               `json:"reference"`
	OrderID   string               `json:"orderId"`
	Status    domain.PaymentStatus `json:"status"`
	Amount    int64                `json:"amount"`
}

// OrderResponse represents the order response
type OrderResponse struct {
	ID               string              `json:"id"`
	Status           domain.OrderStatus  `json:"status"`
	Total            int64               `json:"total"`
	Customer         domain.CheckoutForm `json:"customer"`
	FailedProductIDs []string            `json:"failedProductIds,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        string              `json:"createdAt"`
	UpdatedAt        string              `json:"updatedAt"`
}

type OrderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}
