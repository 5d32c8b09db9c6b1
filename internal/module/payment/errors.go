package payment

import "errors"

// Module errors.
var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidEntityType       = errors.New("invalid entity type")
	ErrMethodNotSupported      = errors.New("payment method not supported by gateway")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrWebhookAlreadyProcessed = errors.New("webhook event already processed")
	ErrMissingProvider         = errors.New("missing provider")
)
