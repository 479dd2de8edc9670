package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storefront"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	EventOrderCreated    = "order_created"
	EventItemAttached    = "item_attached"
	EventStatusChange    = "status_change"
	EventPaymentReceived = "payment_received"
)

type orderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *orderService {
	return &orderService{
		repos:  repos,
		logger: logger,
	}
}

// CreateOrder creates a pending order for a submitted checkout. A second
// order for the same checkout token fails with *errors.ErrConflict.
func (s *orderService) CreateOrder(ctx context.Context, req storefront.CreateOrderRequest) (*domain.Order, error) {
	order := &domain.Order{
		CheckoutToken: req.CheckoutToken,
		Customer:      req.CheckoutForm,
		Total:         req.Total,
		Status:        domain.OrderStatusPendingPayment,
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logEvent(ctx, order.ID, EventOrderCreated, map[string]interface{}{
		"checkout_token": order.CheckoutToken,
		"total":          order.Total,
		"status":         order.Status,
	})

	return order, nil
}

// AttachItem adds one line item to a pending order
func (s *orderService) AttachItem(ctx context.Context, orderID uuid.UUID, productID string, quantity int) (*domain.OrderItem, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusPendingPayment {
		return nil, &errors.ErrConflict{Message: "order is not pending payment"}
	}

	item := &domain.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.repos.OrderItem.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logEvent(ctx, orderID, EventItemAttached, map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})

	return item, nil
}

// FlagReconciliation marks an order whose items were only partially attached
func (s *orderService) FlagReconciliation(ctx context.Context, orderID uuid.UUID, failedProductIDs []string) (*domain.Order, error) {
	order, err := s.transition(ctx, orderID, domain.OrderStatusNeedsReconciliation, failedProductIDs, map[string]interface{}{
		"failed_product_ids": failedProductIDs,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("Order needs reconciliation",
		zap.String("order_id", orderID.String()),
		zap.Strings("failed_product_ids", failedProductIDs),
	)
	return order, nil
}

// CancelOrder cancels an order that has not been paid
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderStatusCancelled, nil, nil)
}

// RecordPayment stores a provider notification. A PAID notification moves a
// pending order to PAID; repeated notifications for a paid order are accepted.
func (s *orderService) RecordPayment(ctx context.Context, n storefront.PaymentNotification) (*domain.Payment, error) {
	orderID, err := uuid.Parse(n.OrderID)
	if err != nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: n.OrderID}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	paid := n.Status == domain.PaymentStatusPaid
	if paid && order.Status != domain.OrderStatusPaid && !order.Status.CanTransitionTo(domain.OrderStatusPaid) {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   domain.OrderStatusPaid,
		}
	}

	if paid && n.Amount != order.Total {
		s.logger.Warn("Payment amount differs from order total",
			zap.String("order_id", orderID.String()),
			zap.String("reference", n.Reference),
			zap.Int64("amount", n.Amount),
			zap.Int64("total", order.Total),
		)
	}

	payment := &domain.Payment{
		Reference: n.Reference,
		OrderID:   orderID,
		Status:    n.Status,
		Amount:    n.Amount,
	}
	if err := s.repos.Payment.Upsert(ctx, payment); err != nil {
		return nil, err
	}

	s.logEvent(ctx, orderID, EventPaymentReceived, map[string]interface{}{
		"reference": n.Reference,
		"status":    n.Status,
		"amount":    n.Amount,
	})

	if paid && order.Status != domain.OrderStatusPaid {
		if _, err := s.transition(ctx, orderID, domain.OrderStatusPaid, nil, map[string]interface{}{
			"reference": n.Reference,
		}); err != nil {
			return nil, err
		}
	}

	return payment, nil
}

func (s *orderService) GetPayment(ctx context.Context, reference string) (*domain.Payment, error) {
	return s.repos.Payment.GetByReference(ctx, reference)
}

// GetOrder returns an order with its attached items
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

func (s *orderService) ListOrders(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	return s.repos.Order.List(ctx, status, limit, offset)
}

func (s *orderService) transition(
	ctx context.Context,
	orderID uuid.UUID,
	to domain.OrderStatus,
	failedProductIDs []string,
	data map[string]interface{},
) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Validate state transition
	if !order.Status.CanTransitionTo(to) {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   to,
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, to, failedProductIDs); err != nil {
		return nil, err
	}

	eventData := map[string]interface{}{
		"from": order.Status,
		"to":   to,
	}
	for k, v := range data {
		eventData[k] = v
	}
	s.logEvent(ctx, orderID, EventStatusChange, eventData)

	from := order.Status
	order.Status = to
	if len(failedProductIDs) > 0 {
		order.FailedProductIDs = failedProductIDs
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return order, nil
}

// logEvent records an audit event. Failures are logged and do not fail the
// operation that triggered them.
func (s *orderService) logEvent(ctx context.Context, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record order event",
			zap.String("order_id", orderID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
