// Package checkout turns a cart and a checkout form into a remote order and
// hands it to the payment step.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storefront"
	"github.com/jafarshop/storefront/internal/validation"
)

// OrderGateway is the slice of the order API used during checkout.
// *storefront.Client implements it.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req storefront.CreateOrderRequest) (*storefront.CreateOrderResponse, error)
	AttachItem(ctx context.Context, req storefront.AttachItemRequest) (*storefront.AttachItemResponse, error)
	FlagReconciliation(ctx context.Context, orderID string, failedProductIDs []string) error
	LookupPayment(ctx context.Context, reference string) (*storefront.PaymentConfirmation, error)
}

// CartSource is the session cart as seen by checkout. *cart.Store implements it.
type CartSource interface {
	// CheckoutCart returns the cart and the token of that same cart state
	CheckoutCart() (domain.Cart, string)
	// Renew moves the cart to a new checkout token without touching its lines
	Renew(ctx context.Context) error
	Clear(ctx context.Context) error
}

type Orchestrator struct {
	gateway  OrderGateway
	cart     CartSource
	notifier Notifier
	logger   *zap.Logger
}

func NewOrchestrator(gateway OrderGateway, cart CartSource, notifier Notifier, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:  gateway,
		cart:     cart,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit validates form, creates the order and attaches every cart line to it.
// The returned Submission is never nil; on success it is AwaitingPayment,
// otherwise it is Failed and the error wraps one of the package sentinels.
// Cart lines are never modified here. When a failure leaves an order behind
// on the server, the cart is renewed so a retry is not taken for a duplicate.
func (o *Orchestrator) Submit(ctx context.Context, form domain.CheckoutForm) (*Submission, error) {
	sub := newSubmission()
	if err := sub.transition(domain.StateValidating); err != nil {
		return sub, err
	}

	c, token := o.cart.CheckoutCart()

	if fieldErrs := validation.Validate(form); len(fieldErrs) > 0 {
		for _, fe := range fieldErrs {
			o.notifier.Notify(Notice{Level: NoticeError, Field: fe.Field, Message: fe.Message})
		}
		sub.fail(domain.SubmissionRejected, func(r *domain.SubmissionResult) {
			r.Errors = fieldErrs
		})
		return sub, fmt.Errorf("%w: %d field errors", ErrValidation, len(fieldErrs))
	}

	if c.IsEmpty() {
		o.notifier.Notify(Notice{Level: NoticeError, Message: "Your cart is empty"})
		sub.fail(domain.SubmissionRejected, nil)
		return sub, ErrEmptyCart
	}

	if err := sub.transition(domain.StateCreatingOrder); err != nil {
		return sub, err
	}

	orderID, err := o.createOrder(ctx, sub, form, c.TotalAmount, token)
	if err != nil {
		return sub, err
	}
	sub.setTotal(c.TotalAmount)

	if err := sub.transition(domain.StateAttachingItems); err != nil {
		return sub, err
	}

	if err := o.attachItems(ctx, sub, orderID, c.Items); err != nil {
		return sub, err
	}

	if err := sub.transition(domain.StateAwaitingPayment); err != nil {
		return sub, err
	}
	sub.update(func(r *domain.SubmissionResult) {
		r.Status = domain.SubmissionCreated
	})

	o.logger.Info("Order submitted, awaiting payment",
		zap.String("order_id", orderID),
		zap.Int("items", len(c.Items)),
		zap.Int64("total", c.TotalAmount),
	)
	o.notifier.Notify(Notice{Level: NoticeInfo, Message: "Order created, continue to payment"})
	return sub, nil
}

func (o *Orchestrator) createOrder(ctx context.Context, sub *Submission, form domain.CheckoutForm, total int64, token string) (string, error) {
	resp, err := o.gateway.CreateOrder(ctx, storefront.CreateOrderRequest{
		CheckoutForm:  form,
		Total:         total,
		CheckoutToken: token,
	})
	if err != nil {
		return "", o.orderCreationFailed(sub, err)
	}

	if resp == nil || resp.ID == "" {
		o.logger.Error("Order API returned success without an order id")
		o.notifier.Notify(Notice{Level: NoticeError, Message: "Order could not be created, please try again"})
		sub.fail(domain.SubmissionRejected, nil)
		// the server may still hold an order under this token
		o.renewCart(ctx)
		return "", ErrMissingOrderID
	}

	sub.update(func(r *domain.SubmissionResult) {
		r.OrderID = resp.ID
	})
	return resp.ID, nil
}

func (o *Orchestrator) orderCreationFailed(sub *Submission, err error) error {
	var apiErr *storefront.APIError
	if !errors.As(err, &apiErr) {
		o.logger.Error("Failed to create order", zap.Error(err))
		o.notifier.Notify(Notice{Level: NoticeError, Message: "Order could not be created, please try again"})
		sub.fail(domain.SubmissionRejected, nil)
		return fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}

	if apiErr.IsConflict() {
		o.notifier.Notify(Notice{Level: NoticeError, Message: "This order has already been submitted"})
		sub.fail(domain.SubmissionRejected, nil)
		return fmt.Errorf("%w: %w", ErrDuplicateOrder, err)
	}

	if len(apiErr.Details) > 0 {
		for _, fe := range apiErr.Details {
			o.notifier.Notify(Notice{Level: NoticeError, Field: fe.Field, Message: fe.Message})
		}
	} else {
		msg := apiErr.Message
		if msg == "" {
			msg = "Order could not be created, please try again"
		}
		o.notifier.Notify(Notice{Level: NoticeError, Message: msg})
	}

	sub.fail(domain.SubmissionRejected, func(r *domain.SubmissionResult) {
		r.Errors = apiErr.Details
	})
	return fmt.Errorf("%w: %w", ErrOrderCreation, err)
}

// attachItems posts lines one at a time in cart order. The first failure
// stops the loop; lines already attached stay attached and the order is
// flagged for reconciliation.
func (o *Orchestrator) attachItems(ctx context.Context, sub *Submission, orderID string, items []domain.LineItem) error {
	for i, item := range items {
		_, err := o.gateway.AttachItem(ctx, storefront.AttachItemRequest{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
		if err == nil {
			sub.update(func(r *domain.SubmissionResult) {
				r.AttachedItemCount++
			})
			continue
		}

		skipped := make([]string, 0, len(items)-i-1)
		for _, rest := range items[i+1:] {
			skipped = append(skipped, rest.ProductID)
		}

		o.logger.Error("Failed to attach order item",
			zap.String("order_id", orderID),
			zap.String("product_id", item.ProductID),
			zap.Int("position", i),
			zap.Error(err),
		)
		sub.fail(domain.SubmissionPartiallyAttached, func(r *domain.SubmissionResult) {
			r.FailedItemIDs = []string{item.ProductID}
			r.SkippedItemIDs = skipped
		})
		o.notifier.Notify(Notice{
			Level:   NoticeError,
			Message: fmt.Sprintf("Item %s could not be added to your order", item.ProductID),
		})

		o.flagReconciliation(ctx, orderID, item.ProductID, skipped)
		o.renewCart(ctx)
		return fmt.Errorf("%w: product %s: %w", ErrPartiallyAttached, item.ProductID, err)
	}
	return nil
}

func (o *Orchestrator) flagReconciliation(ctx context.Context, orderID, failed string, skipped []string) {
	ids := append([]string{failed}, skipped...)
	if err := o.gateway.FlagReconciliation(ctx, orderID, ids); err != nil {
		o.logger.Error("Failed to flag order for reconciliation",
			zap.String("order_id", orderID),
			zap.Strings("product_ids", ids),
			zap.Error(err),
		)
		return
	}
	o.logger.Info("Order flagged for reconciliation",
		zap.String("order_id", orderID),
		zap.Strings("product_ids", ids),
	)
}

func (o *Orchestrator) renewCart(ctx context.Context) {
	if err := o.cart.Renew(ctx); err != nil {
		o.logger.Error("Failed to renew cart after failed submission", zap.Error(err))
	}
}
