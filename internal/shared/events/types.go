package events

import "github.com/google/uuid"

// Payment event type constants.
const (
	PaymentConfirmedType = "PaymentConfirmed"
	PaymentFailedType    = "PaymentFailed"
)

// Entity type constants for event handlers - mirror the gateway module
// constants to avoid a cyclic import.
const (
	EntityEventRegistration = "EVENT_REGISTRATION"
	EntityAthleteMembership = "ATHLETE_MEMBERSHIP"
	EntityClubAffiliation   = "CLUB_AFFILIATION"
	EntityOther             = "OTHER"
)

// PaymentConfirmedEvent is emitted when a provider webhook confirms a
// payment. Handlers confirm the registration or activate the
// membership/affiliation and enqueue the user notification.
type PaymentConfirmedEvent struct {
	BaseEvent

	// PaymentID is the unique identifier of the payment.
	PaymentID uuid.UUID `json:"payment_id"`

	// EntityType identifies the business object the payment belongs to.
	EntityType string `json:"entity_type"`

	// EntityID is the owning registration/athlete/club ID.
	EntityID uuid.UUID `json:"entity_id"`

	// ProtocolNumber is the human-readable tracking reference.
	ProtocolNumber string `json:"protocol_number"`

	// Amount is the payment amount in centavos.
	Amount int64 `json:"amount"`

	// Provider is the gateway that confirmed the payment.
	Provider string `json:"provider"`

	// Payer contact details for the confirmation notification.
	PayerName  string `json:"payer_name,omitempty"`
	PayerEmail string `json:"payer_email,omitempty"`
	PayerPhone string `json:"payer_phone,omitempty"`
}

// NewPaymentConfirmedEvent creates a new PaymentConfirmedEvent.
func NewPaymentConfirmedEvent(paymentID, entityID uuid.UUID, entityType, protocolNumber, provider string, amount int64) *PaymentConfirmedEvent {
	return &PaymentConfirmedEvent{
		BaseEvent:      NewBaseEvent(PaymentConfirmedType, paymentID, "Payment"),
		PaymentID:      paymentID,
		EntityType:     entityType,
		EntityID:       entityID,
		ProtocolNumber: protocolNumber,
		Amount:         amount,
		Provider:       provider,
	}
}

// PaymentFailedEvent is emitted when a provider reports a failed or
// expired payment.
type PaymentFailedEvent struct {
	BaseEvent

	PaymentID  uuid.UUID `json:"payment_id"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Reason     string    `json:"reason,omitempty"`
	Provider   string    `json:"provider"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent.
func NewPaymentFailedEvent(paymentID, entityID uuid.UUID, entityType, reason, provider string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent:  NewBaseEvent(PaymentFailedType, paymentID, "Payment"),
		PaymentID:  paymentID,
		EntityType: entityType,
		EntityID:   entityID,
		Reason:     reason,
		Provider:   provider,
	}
}
