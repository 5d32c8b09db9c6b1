package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses. These mirror the normalized payment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
)

// Transaction is one row of the payment ledger, independent of which
// gateway processed it. PaymentID uniquely identifies a transaction.
type Transaction struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Type           string         `gorm:"size:50;not null;index" json:"type"`
	EntityType     string         `gorm:"size:50;not null;index:idx_transactions_entity" json:"entity_type"`
	EntityID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_transactions_entity" json:"entity_id"`
	Amount         int64          `gorm:"not null" json:"amount"`
	Currency       string         `gorm:"size:3;not null;default:'BRL'" json:"currency"`
	Status         string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentID      string         `gorm:"size:100;not null;uniqueIndex" json:"payment_id"`
	ProtocolNumber string         `gorm:"size:20;index" json:"protocol_number"`
	Provider       string         `gorm:"size:50" json:"provider"`
	Metadata       map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Events []TransactionEvent `gorm:"foreignKey:TransactionID" json:"events,omitempty"`
}

// TableName returns the table name for GORM.
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionEvent records one status change of a transaction.
type TransactionEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	FromStatus    string    `gorm:"size:20;not null" json:"from_status"`
	ToStatus      string    `gorm:"size:20;not null" json:"to_status"`
	Reason        string    `gorm:"size:255" json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (TransactionEvent) TableName() string {
	return "transaction_events"
}
