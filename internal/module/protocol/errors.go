package protocol

import "errors"

// Module errors.
var (
	ErrProtocolNotFound  = errors.New("protocol not found")
	ErrInvalidEntityType = errors.New("invalid protocol entity type")
)
