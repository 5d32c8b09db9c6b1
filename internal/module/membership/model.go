package membership

import (
	"time"

	"github.com/google/uuid"
)

// Membership kinds.
const (
	KindAthlete = "ATHLETE"
	KindClub    = "CLUB"
)

// Membership statuses.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
)

// Membership is an annual athlete membership or club affiliation. It
// stays PENDING until the affiliation fee is paid.
type Membership struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Kind           string     `gorm:"size:20;not null;index" json:"kind"`
	AthleteID      *uuid.UUID `gorm:"type:uuid;index" json:"athlete_id,omitempty"`
	ClubID         *uuid.UUID `gorm:"type:uuid;index" json:"club_id,omitempty"`
	Year           int        `gorm:"not null;index" json:"year"`
	Status         string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ProtocolNumber string     `gorm:"size:20;index" json:"protocol_number,omitempty"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Membership) TableName() string {
	return "memberships"
}
