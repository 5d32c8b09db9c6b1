package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/events"
)

// Payment statuses. Terminal states are confirmed, failed, and expired;
// a payment only ever transitions out of pending.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
)

// Payment is a payment attempt against a configured gateway. Exactly
// one of RegistrationID, AthleteID, ClubID is set, matching EntityType;
// OTHER payments carry the entity reference in EntityID alone.
type Payment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType     string     `gorm:"size:50;not null;index" json:"entity_type"`
	EntityID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"entity_id"`
	RegistrationID *uuid.UUID `gorm:"type:uuid;index" json:"registration_id,omitempty"`
	AthleteID      *uuid.UUID `gorm:"type:uuid;index" json:"athlete_id,omitempty"`
	ClubID         *uuid.UUID `gorm:"type:uuid;index" json:"club_id,omitempty"`

	PayerName  string `gorm:"size:255" json:"payer_name,omitempty"`
	PayerEmail string `gorm:"size:255" json:"payer_email,omitempty"`
	PayerPhone string `gorm:"size:30" json:"payer_phone,omitempty"`

	Amount         int64      `gorm:"not null" json:"amount"`
	Currency       string     `gorm:"size:3;not null;default:'BRL'" json:"currency"`
	Method         string     `gorm:"size:20;not null" json:"method"`
	Status         string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	StatusDetail   string     `gorm:"size:255" json:"status_detail,omitempty"`
	Provider       string     `gorm:"size:50;not null" json:"provider"`
	GatewayID      uuid.UUID  `gorm:"type:uuid;not null" json:"gateway_id"`
	ExternalID     string     `gorm:"size:100;index" json:"external_id"`
	ProtocolNumber string     `gorm:"size:20;index" json:"protocol_number"`
	PaymentURL     string     `gorm:"size:500" json:"payment_url,omitempty"`
	QRCode         string     `gorm:"type:text" json:"qr_code,omitempty"`
	QRCodeBase64   string     `gorm:"type:text" json:"qr_code_base64,omitempty"`
	RawPayload     []byte     `gorm:"type:jsonb" json:"-"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Payment) TableName() string {
	return "payments"
}

// SetEntityLink populates the owning-entity column for the payment's
// entity type.
func (p *Payment) SetEntityLink() {
	id := p.EntityID
	switch p.EntityType {
	case events.EntityEventRegistration:
		p.RegistrationID = &id
	case events.EntityAthleteMembership:
		p.AthleteID = &id
	case events.EntityClubAffiliation:
		p.ClubID = &id
	}
}

// IsTerminal reports whether the payment reached a final status.
func (p *Payment) IsTerminal() bool {
	return p.Status != StatusPending
}

// WebhookEvent records one received provider callback, keyed by a
// digest of the raw payload so replays are detected.
type WebhookEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Provider    string     `gorm:"size:50;not null" json:"provider"`
	EventKey    string     `gorm:"size:64;not null;uniqueIndex" json:"event_key"`
	PaymentID   *uuid.UUID `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	Processed   bool       `gorm:"not null;default:false" json:"processed"`
	Error       string     `gorm:"size:500" json:"error,omitempty"`
	ReceivedAt  time.Time  `gorm:"not null" json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// TableName returns the table name for GORM.
func (WebhookEvent) TableName() string {
	return "payment_webhook_events"
}
