package registration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

// PaymentEventHandler confirms registrations when their payment is
// confirmed and cancels them when it fails or expires.
type PaymentEventHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewPaymentEventHandler creates a new payment event handler.
func NewPaymentEventHandler(service *Service, logger *zap.Logger) *PaymentEventHandler {
	return &PaymentEventHandler{service: service, logger: logger}
}

// Handles returns the event types this handler subscribes to.
func (h *PaymentEventHandler) Handles() []string {
	return []string{events.PaymentConfirmedType, events.PaymentFailedType}
}

// Handle applies a payment outcome to the owning registration. Events
// for other entity types are ignored.
func (h *PaymentEventHandler) Handle(event events.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case *events.PaymentConfirmedEvent:
		if e.EntityType != events.EntityEventRegistration {
			return nil
		}
		if err := h.service.Confirm(ctx, e.EntityID, e.ProtocolNumber); err != nil {
			return fmt.Errorf("confirm registration %s: %w", e.EntityID, err)
		}
	case *events.PaymentFailedEvent:
		if e.EntityType != events.EntityEventRegistration {
			return nil
		}
		if err := h.service.Cancel(ctx, e.EntityID); err != nil {
			return fmt.Errorf("cancel registration %s: %w", e.EntityID, err)
		}
	default:
		h.logger.Warn("unexpected event type", zap.String("event_type", event.EventType()))
	}
	return nil
}
