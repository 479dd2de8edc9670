package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jafarshop/storefront/internal/domain"
)

// OrderRepository stores orders. Create returns *errors.ErrConflict when an
// order already exists for the checkout token.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, failedProductIDs []string) error
	List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
}

type OrderItemRepository interface {
	Create(ctx context.Context, item *domain.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
}

type PaymentRepository interface {
	Upsert(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
}

// OrderEventRepository is the audit log and the outbox for the event publisher.
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	ListUnpublished(ctx context.Context, limit int) ([]*domain.OrderEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

// Repositories groups the stores used by the order API
type Repositories struct {
	Order      OrderRepository
	OrderItem  OrderItemRepository
	Payment    PaymentRepository
	OrderEvent OrderEventRepository
}
