package registration

import (
	"time"

	"github.com/google/uuid"
)

// Registration statuses.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Registration is an athlete's entry in an event. It stays PENDING
// until its payment is confirmed.
type Registration struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID        uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	AthleteID      uuid.UUID `gorm:"type:uuid;not null;index" json:"athlete_id"`
	Category       string    `gorm:"size:100" json:"category,omitempty"`
	Status         string    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ProtocolNumber string    `gorm:"size:20;index" json:"protocol_number,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Registration) TableName() string {
	return "registrations"
}
