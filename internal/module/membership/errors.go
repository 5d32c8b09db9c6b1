package membership

import "errors"

// Module errors.
var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrCancelled          = errors.New("membership is cancelled")
)
