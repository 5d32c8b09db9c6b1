package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

var entityLabels = map[string]string{
	events.EntityEventRegistration: "inscrição",
	events.EntityAthleteMembership: "filiação",
	events.EntityClubAffiliation:   "filiação de clube",
	events.EntityOther:             "pagamento",
}

// PaymentEventHandler queues confirmation messages to the payer when a
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
	return []string{events.PaymentConfirmedType}
}

// Handle enqueues one notification per available contact channel.
// Delivery failures stay inside the queue; enqueue failures are logged
// and swallowed so a broken queue never blocks payment confirmation.
func (h *PaymentEventHandler) Handle(event events.Event) error {
	e, ok := event.(*events.PaymentConfirmedEvent)
	if !ok {
		return nil
	}

	label := entityLabels[e.EntityType]
	if label == "" {
		label = "pagamento"
	}
	body := fmt.Sprintf(
		"Olá %s, o pagamento da sua %s foi confirmado. Protocolo: %s. Valor: R$ %d,%02d.",
		e.PayerName, label, e.ProtocolNumber, e.Amount/100, e.Amount%100,
	)

	ctx := context.Background()
	if e.PayerEmail != "" {
		if _, err := h.service.Enqueue(ctx, &EnqueueInput{
			Channel:   ChannelEmail,
			Recipient: e.PayerEmail,
			Subject:   fmt.Sprintf("Pagamento confirmado - protocolo %s", e.ProtocolNumber),
			Body:      body,
			Metadata:  map[string]any{"payment_id": e.PaymentID.String()},
		}); err != nil {
			h.logger.Error("enqueue email notification failed",
				zap.String("payment_id", e.PaymentID.String()),
				zap.Error(err))
		}
	}
	if e.PayerPhone != "" {
		if _, err := h.service.Enqueue(ctx, &EnqueueInput{
			Channel:   ChannelWhatsApp,
			Recipient: e.PayerPhone,
			Body:      body,
			Metadata:  map[string]any{"payment_id": e.PaymentID.String()},
		}); err != nil {
			h.logger.Error("enqueue whatsapp notification failed",
				zap.String("payment_id", e.PaymentID.String()),
				zap.Error(err))
		}
	}
	return nil
}
