package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for membership data access.
type Repository interface {
	Create(ctx context.Context, m *Membership) error
	Update(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*Membership, error)
	ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Membership, error)
	ListByClub(ctx context.Context, clubID uuid.UUID) ([]*Membership, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new membership repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Membership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, m *Membership) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Membership, error) {
	var m Membership
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

func (r *repository) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Membership, error) {
	var memberships []*Membership
	err := r.db.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Order("year DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships by athlete: %w", err)
	}
	return memberships, nil
}

func (r *repository) ListByClub(ctx context.Context, clubID uuid.UUID) ([]*Membership, error) {
	var memberships []*Membership
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("year DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("list memberships by club: %w", err)
	}
	return memberships, nil
}
