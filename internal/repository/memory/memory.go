// Package memory implements the repository ports in process memory. It backs
// the API in tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

type store struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]domain.Order
	tokens   map[string]uuid.UUID
	items    map[uuid.UUID][]domain.OrderItem
	payments map[string]domain.Payment
	events   []domain.OrderEvent
}

// NewRepositories returns repositories sharing one in-memory store
func NewRepositories() *repository.Repositories {
	s := &store{
		orders:   make(map[uuid.UUID]domain.Order),
		tokens:   make(map[string]uuid.UUID),
		items:    make(map[uuid.UUID][]domain.OrderItem),
		payments: make(map[string]domain.Payment),
	}
	return &repository.Repositories{
		Order:      (*orderRepository)(s),
		OrderItem:  (*orderItemRepository)(s),
		Payment:    (*paymentRepository)(s),
		OrderEvent: (*orderEventRepository)(s),
	}
}

type orderRepository store

func (r *orderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[order.CheckoutToken]; ok {
		return &errors.ErrConflict{Message: "order already exists for checkout token"}
	}

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	r.orders[order.ID] = copyOrder(*order)
	r.tokens[order.CheckoutToken] = order.ID
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	out := copyOrder(order)
	return &out, nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus, failedProductIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	if len(failedProductIDs) > 0 {
		order.FailedProductIDs = append([]string(nil), failedProductIDs...)
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

func (r *orderRepository) List(_ context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if status == "" || order.Status == status {
			matched = append(matched, order)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := make([]*domain.Order, 0, limit)
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		o := copyOrder(matched[i])
		out = append(out, &o)
	}
	return out, nil
}

type orderItemRepository store

func (r *orderItemRepository) Create(_ context.Context, item *domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[item.OrderID]; !ok {
		return &errors.ErrNotFound{Resource: "order", ID: item.OrderID.String()}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.items[item.OrderID] = append(r.items[item.OrderID], *item)
	return nil
}

func (r *orderItemRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.items[orderID]
	out := make([]*domain.OrderItem, 0, len(items))
	for i := range items {
		item := items[i]
		out = append(out, &item)
	}
	return out, nil
}

type paymentRepository store

func (r *paymentRepository) Upsert(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.payments[payment.Reference]; ok {
		if existing.OrderID != payment.OrderID {
			return &errors.ErrConflict{Message: "payment reference belongs to another order"}
		}
		payment.CreatedAt = existing.CreatedAt
	} else {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	r.payments[payment.Reference] = *payment
	return nil
}

func (r *paymentRepository) GetByReference(_ context.Context, reference string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[reference]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: reference}
	}
	return &p, nil
}

type orderEventRepository store

func (r *orderEventRepository) Create(_ context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *orderEventRepository) ListUnpublished(_ context.Context, limit int) ([]*domain.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.OrderEvent, 0)
	for i := range r.events {
		if len(out) == limit {
			break
		}
		if r.events[i].PublishedAt == nil {
			event := r.events[i]
			out = append(out, &event)
		}
	}
	return out, nil
}

func (r *orderEventRepository) MarkPublished(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.events {
		if r.events[i].ID == id && r.events[i].PublishedAt == nil {
			now := time.Now()
			r.events[i].PublishedAt = &now
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "unpublished event", ID: id.String()}
}

func copyOrder(o domain.Order) domain.Order {
	o.FailedProductIDs = append([]string(nil), o.FailedProductIDs...)
	return o
}
