package gateway

import "errors"

// Module errors.
var (
	ErrGatewayNotFound     = errors.New("gateway not found")
	ErrNoActiveGateway     = errors.New("no active gateway for entity type")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	ErrInvalidCredentials  = errors.New("invalid provider credentials")
	ErrInvalidEntityType   = errors.New("invalid entity type")
)
