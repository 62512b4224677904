package services

import "errors"

var (
	ErrEmptyCart                = errors.New("cart is empty")
	ErrMissingCustomerField     = errors.New("missing customer field")
	ErrInvalidLineItem          = errors.New("invalid line item")
	ErrInvalidPaymentMethod     = errors.New("invalid payment method")
	ErrInvalidPaymentStatus     = errors.New("invalid payment status")
	ErrMissingReference         = errors.New("reference and amount are required")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidFulfillmentStatus = errors.New("invalid fulfillment status")
	ErrInvalidReference         = errors.New("invalid order reference")
	ErrMissingOrderID           = errors.New("order id is required")
	ErrMalformedEvent           = errors.New("malformed webhook event")

	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrUnresolvableProperty = errors.New("signature property could not be resolved")
	ErrAmountMismatch       = errors.New("transaction amount does not match order total")

	ErrOrderNotFound       = errors.New("order not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCounterMissing      = errors.New("order counter is missing")
	ErrGatewayStatus       = errors.New("payment gateway returned an error")
)

// validationError marks errors the caller can fix by changing the request.
type validationError struct {
	err    error
	detail string
}

func (e *validationError) Error() string {
	if e.detail == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.detail
}

func (e *validationError) Unwrap() error { return e.err }

func invalid(err error, detail string) error {
	return &validationError{err: err, detail: detail}
}

// IsValidation reports whether err belongs to the client-error family.
func IsValidation(err error) bool {
	var v *validationError
	if errors.As(err, &v) {
		return true
	}
	for _, target := range []error{
		ErrEmptyCart, ErrMissingCustomerField, ErrInvalidLineItem, ErrInvalidPaymentMethod, ErrInvalidPaymentStatus,
		ErrMissingReference, ErrInvalidAmount, ErrInvalidFulfillmentStatus, ErrInvalidReference,
		ErrMissingOrderID, ErrMalformedEvent, ErrAmountMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsSignatureFailure reports whether err means the webhook must be treated as tampered.
func IsSignatureFailure(err error) bool {
	return errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrUnresolvableProperty)
}

// IsNotFound reports whether err names a missing order or transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrTransactionNotFound)
}
