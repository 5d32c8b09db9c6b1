package membership

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

// PaymentEventHandler activates memberships and affiliations when their
// payment is confirmed.
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

func membershipEntity(entityType string) bool {
	return entityType == events.EntityAthleteMembership || entityType == events.EntityClubAffiliation
}

// Handle applies a payment outcome to the owning membership. Events for
// other entity types are ignored.
func (h *PaymentEventHandler) Handle(event events.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case *events.PaymentConfirmedEvent:
		if !membershipEntity(e.EntityType) {
			return nil
		}
		if err := h.service.Activate(ctx, e.EntityID, e.ProtocolNumber); err != nil {
			return fmt.Errorf("activate membership %s: %w", e.EntityID, err)
		}
	case *events.PaymentFailedEvent:
		if !membershipEntity(e.EntityType) {
			return nil
		}
		if err := h.service.Cancel(ctx, e.EntityID); err != nil {
			return fmt.Errorf("cancel membership %s: %w", e.EntityID, err)
		}
	default:
		h.logger.Warn("unexpected event type", zap.String("event_type", event.EventType()))
	}
	return nil
}
