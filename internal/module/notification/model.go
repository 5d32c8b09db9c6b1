package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Notification statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notification is one outbound message in the delivery queue.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Channel   string         `gorm:"size:20;not null;index" json:"channel"`
	Recipient string         `gorm:"size:255;not null" json:"recipient"`
	Subject   string         `gorm:"size:255" json:"subject,omitempty"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	Metadata  map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`
	Status    string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Attempts  int            `gorm:"not null;default:0" json:"attempts"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// Attempt records one delivery try for a notification.
type Attempt struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NotificationID uuid.UUID `gorm:"type:uuid;not null;index" json:"notification_id"`
	Channel        string    `gorm:"size:20;not null" json:"channel"`
	Success        bool      `gorm:"not null" json:"success"`
	Error          string    `gorm:"size:500" json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (Attempt) TableName() string {
	return "notification_attempts"
}
