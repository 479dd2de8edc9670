package domain

// OrderStatus represents the status of a storefront order
type OrderStatus string

const (
	OrderStatusPendingPayment      OrderStatus = "PENDING_PAYMENT"
	OrderStatusNeedsReconciliation OrderStatus = "NEEDS_RECONCILIATION"
	OrderStatusPaid                OrderStatus = "PAID"
	OrderStatusCancelled           OrderStatus = "CANCELLED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPendingPayment,
		OrderStatusNeedsReconciliation,
		OrderStatusPaid,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPendingPayment:
		return newStatus == OrderStatusPaid ||
			newStatus == OrderStatusNeedsReconciliation ||
			newStatus == OrderStatusCancelled
	case OrderStatusNeedsReconciliation:
		return newStatus == OrderStatusCancelled
	case OrderStatusPaid, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// PaymentStatus is reported by the payment provider for a payment reference
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// SubmissionState is a step of one checkout attempt on the client
type SubmissionState string

const (
	StateIdle            SubmissionState = "IDLE"
	StateValidating      SubmissionState = "VALIDATING"
	StateCreatingOrder   SubmissionState = "CREATING_ORDER"
	StateAttachingItems  SubmissionState = "ATTACHING_ITEMS"
	StateAwaitingPayment SubmissionState = "AWAITING_PAYMENT"
	StateCompleted       SubmissionState = "COMPLETED"
	StateFailed          SubmissionState = "FAILED"
)

// IsTerminal reports whether no further transition is possible
func (s SubmissionState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo checks if a submission state transition is valid
func (s SubmissionState) CanTransitionTo(next SubmissionState) bool {
	switch s {
	case StateIdle:
		return next == StateValidating
	case StateValidating:
		return next == StateCreatingOrder || next == StateFailed
	case StateCreatingOrder:
		return next == StateAttachingItems || next == StateFailed
	case StateAttachingItems:
		return next == StateAwaitingPayment || next == StateFailed
	case StateAwaitingPayment:
		return next == StateCompleted
	default:
		return false
	}
}

func (s SubmissionState) String() string {
	return string(s)
}

// SubmissionStatus is the terminal outcome of order submission
type SubmissionStatus string

const (
	SubmissionCreated           SubmissionStatus = "created"
	SubmissionPartiallyAttached SubmissionStatus = "partially-attached"
	SubmissionRejected          SubmissionStatus = "rejected"
)
