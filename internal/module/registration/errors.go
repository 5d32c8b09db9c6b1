package registration

import "errors"

// Module errors.
var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyConfirmed     = errors.New("registration already confirmed")
	ErrCancelled            = errors.New("registration is cancelled")
)
