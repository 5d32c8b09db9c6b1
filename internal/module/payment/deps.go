package payment

import (
	"context"

	"github.com/fedpay/server/internal/module/gateway"
	"github.com/fedpay/server/internal/module/gateway/provider"
	"github.com/fedpay/server/internal/module/protocol"
	"github.com/fedpay/server/internal/module/transaction"
	"github.com/fedpay/server/internal/shared/events"
)

// GatewayResolver resolves gateway configurations to provider clients.
// Implemented by the gateway service.
type GatewayResolver interface {
	ClientFor(ctx context.Context, entityType string) (*gateway.GatewayConfig, provider.Client, error)
	ClientForProvider(ctx context.Context, providerName string) (*gateway.GatewayConfig, provider.Client, error)
}

// ProtocolGenerator assigns tracking numbers to payments. Implemented
// by the protocol service.
type ProtocolGenerator interface {
	Generate(ctx context.Context, in *protocol.GenerateInput) (*protocol.Protocol, error)
	UpdateStatus(ctx context.Context, number, status string) error
}

// Ledger records payment transactions. Implemented by the transaction
// service.
type Ledger interface {
	Create(ctx context.Context, in *transaction.CreateInput) (*transaction.Transaction, error)
	UpdateStatus(ctx context.Context, paymentID, status, reason string) (*transaction.Transaction, error)
}

// EventPublisher publishes domain events for downstream side effects.
// Implemented by the shared event bus.
type EventPublisher interface {
	Publish(event events.Event) error
}
