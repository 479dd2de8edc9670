package checkout

import "errors"

var (
	ErrValidation         = errors.New("checkout form is invalid")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderCreation      = errors.New("order creation failed")
	ErrDuplicateOrder     = errors.New("order was already submitted")
	ErrMissingOrderID     = errors.New("order created without an id")
	ErrPartiallyAttached  = errors.New("order items were only partially attached")
	ErrPaymentUnverified  = errors.New("payment could not be verified")
	ErrNotAwaitingPayment = errors.New("submission is not awaiting payment")
)
