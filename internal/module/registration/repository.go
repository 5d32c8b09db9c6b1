package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for registration data access.
type Repository interface {
	Create(ctx context.Context, r *Registration) error
	Update(ctx context.Context, r *Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Registration, error)
	ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Registration, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new registration repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reg *Registration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, reg *Registration) error {
	if err := r.db.WithContext(ctx).Save(reg).Error; err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Registration, error) {
	var regs []*Registration
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("list registrations by event: %w", err)
	}
	return regs, nil
}

func (r *repository) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Registration, error) {
	var regs []*Registration
	err := r.db.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Order("created_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("list registrations by athlete: %w", err)
	}
	return regs, nil
}
