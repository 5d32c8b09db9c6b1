package transaction

import "errors"

// Module errors.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicatePaymentID  = errors.New("transaction with this payment ID already exists")
)
