package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents an order created from a submitted checkout
type Order struct {
	ID               uuid.UUID
	CheckoutToken    string
	Customer         CheckoutForm
	Total            int64
	Status           OrderStatus
	FailedProductIDs []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem represents a line item attached to an order
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID string
	Quantity  int
	CreatedAt time.Time
}

// Payment is the provider's record for a payment reference
type Payment struct {
	Reference string
	OrderID   uuid.UUID
	Status    PaymentStatus
	Amount    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderEvent represents an audit event for an order, published to the event stream
type OrderEvent struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	EventType   string
	EventData   map[string]interface{} // JSONB
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// FieldError is one failed rule for one form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmissionResult describes how far an order submission got
type SubmissionResult struct {
	OrderID           string           `json:"orderId,omitempty"`
	AttachedItemCount int              `json:"attachedItemCount"`
	FailedItemIDs     []string         `json:"failedItemIds,omitempty"`
	SkippedItemIDs    []string         `json:"skippedItemIds,omitempty"`
	Status            SubmissionStatus `json:"status"`
	Errors            []FieldError     `json:"errors,omitempty"`
}
