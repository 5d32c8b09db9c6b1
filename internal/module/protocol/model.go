package protocol

import (
	"time"

	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/events"
)

// Protocol statuses.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// prefixes maps entity types to their protocol number prefix.
var prefixes = map[string]string{
	events.EntityAthleteMembership: "FIL",
	events.EntityEventRegistration: "EVT",
	events.EntityClubAffiliation:   "CLB",
	events.EntityOther:             "OTH",
}

// Protocol is a human-readable tracking number assigned to a payment.
type Protocol struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Number     string         `gorm:"size:20;not null;uniqueIndex" json:"number"`
	EntityType string         `gorm:"size:50;not null;index:idx_protocols_entity" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_protocols_entity" json:"entity_id"`
	PaymentID  string         `gorm:"size:100;index" json:"payment_id"`
	Status     string         `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	Metadata   map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Protocol) TableName() string {
	return "protocols"
}

// Sequence is the per (entity type, year) monotonic counter behind
// protocol numbers. Incremented atomically by the database so numbers
// are never reused within a (type, year) pair.
type Sequence struct {
	EntityType string `gorm:"size:50;primaryKey"`
	Year       int    `gorm:"primaryKey"`
	Counter    int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM.
func (Sequence) TableName() string {
	return "protocol_sequences"
}
