package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storefront"
)

// PaymentVerifier confirms a payment reference against the order API
type PaymentVerifier interface {
	LookupPayment(ctx context.Context, reference string) (*storefront.PaymentConfirmation, error)
}

// PaymentBridge receives the payment widget callbacks for a submission.
// A success signal is only trusted after the reference is confirmed
// server-side.
type PaymentBridge struct {
	verifier   PaymentVerifier
	cart       CartSource
	notifier   Notifier
	logger     *zap.Logger
	onComplete func(orderID string)
}

// NewPaymentBridge creates a bridge. onComplete runs after a verified
// payment, e.g. to redirect the shopper; it may be nil.
func NewPaymentBridge(verifier PaymentVerifier, cart CartSource, notifier Notifier, logger *zap.Logger, onComplete func(orderID string)) *PaymentBridge {
	return &PaymentBridge{
		verifier:   verifier,
		cart:       cart,
		notifier:   notifier,
		logger:     logger,
		onComplete: onComplete,
	}
}

// Success verifies reference, completes the submission and clears the cart.
// On any verification failure the cart and submission are left unchanged.
// A payment verified after the submission already completed is refused with
// ErrNotAwaitingPayment.
func (b *PaymentBridge) Success(ctx context.Context, sub *Submission, reference string) error {
	if sub.State() != domain.StateAwaitingPayment {
		return ErrNotAwaitingPayment
	}
	orderID := sub.OrderID()

	confirmation, err := b.verifier.LookupPayment(ctx, reference)
	if err != nil {
		b.logger.Warn("Payment lookup failed",
			zap.String("order_id", orderID),
			zap.String("reference", reference),
			zap.Error(err),
		)
		b.notifier.Notify(Notice{Level: NoticeError, Message: "We could not confirm your payment yet"})
		return fmt.Errorf("%w: %w", ErrPaymentUnverified, err)
	}

	if confirmation.Status != domain.PaymentStatusPaid || confirmation.OrderID != orderID {
		b.logger.Warn("Payment reference does not confirm order",
			zap.String("order_id", orderID),
			zap.String("reference", reference),
			zap.String("payment_order_id", confirmation.OrderID),
			zap.String("payment_status", string(confirmation.Status)),
		)
		b.notifier.Notify(Notice{Level: NoticeError, Message: "We could not confirm your payment yet"})
		return fmt.Errorf("%w: reference %s", ErrPaymentUnverified, reference)
	}

	// only one verified success may complete the submission and clear the cart
	if err := sub.transition(domain.StateCompleted); err != nil {
		return fmt.Errorf("%w: %w", ErrNotAwaitingPayment, err)
	}

	b.logger.Info("Payment confirmed",
		zap.String("order_id", orderID),
		zap.String("reference", reference),
		zap.Int64("amount", confirmation.Amount),
	)

	clearErr := b.cart.Clear(ctx)
	if clearErr != nil {
		b.logger.Error("Failed to clear cart after payment",
			zap.String("order_id", orderID),
			zap.Error(clearErr),
		)
	}
	b.notifier.Notify(Notice{Level: NoticeSuccess, Message: "Payment received, thank you for your order"})

	if b.onComplete != nil {
		b.onComplete(orderID)
	}
	if clearErr != nil {
		return fmt.Errorf("clear cart: %w", clearErr)
	}
	return nil
}

// Error reports a failed payment attempt. The order stays open for another try.
func (b *PaymentBridge) Error(sub *Submission, message string) {
	b.logger.Warn("Payment failed",
		zap.String("order_id", sub.OrderID()),
		zap.String("message", message),
	)
	b.notifier.Notify(Notice{Level: NoticeError, Message: "Payment failed: " + message})
}

// Closed reports that the shopper left the payment step.
func (b *PaymentBridge) Closed(sub *Submission) {
	b.logger.Info("Payment window closed", zap.String("order_id", sub.OrderID()))
	b.notifier.Notify(Notice{Level: NoticeInfo, Message: "Payment was not completed, your cart has been kept"})
}

// OrderReader looks up an existing order. *storefront.Client implements it.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*storefront.OrderResponse, error)
}

// ResumeSubmission rebuilds the payment step for an order created by an
// earlier submission, so payment can be retried without a new order. Only
// PENDING_PAYMENT orders can be resumed.
func ResumeSubmission(ctx context.Context, orders OrderReader, orderID string) (*Submission, error) {
	order, err := orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if order.Status != domain.OrderStatusPendingPayment {
		return nil, fmt.Errorf("%w: order %s is %s", ErrNotAwaitingPayment, orderID, order.Status)
	}

	return &Submission{
		state: domain.StateAwaitingPayment,
		total: order.Total,
		result: domain.SubmissionResult{
			OrderID:           order.ID,
			AttachedItemCount: len(order.Items),
			Status:            domain.SubmissionCreated,
		},
	}, nil
}
