package registration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateInput is the input for creating a registration.
type CreateInput struct {
	EventID   uuid.UUID
	AthleteID uuid.UUID
	Category  string
}

// Service manages event registrations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new registration service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registers an athlete for an event in PENDING status.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Registration, error) {
	reg := &Registration{
		ID:        uuid.New(),
		EventID:   in.EventID,
		AthleteID: in.AthleteID,
		Category:  in.Category,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}

	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID.String()),
		zap.String("event_id", reg.EventID.String()))
	return reg, nil
}

// Confirm marks a registration as CONFIRMED once its payment clears.
// Confirming twice is a no-op; a cancelled registration is not revived.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, protocolNumber string) error {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status == StatusConfirmed {
		return nil
	}
	if reg.Status == StatusCancelled {
		return ErrCancelled
	}

	now := time.Now()
	reg.Status = StatusConfirmed
	reg.ConfirmedAt = &now
	if protocolNumber != "" {
		reg.ProtocolNumber = protocolNumber
	}
	if err := s.repo.Update(ctx, reg); err != nil {
		return err
	}

	s.logger.Info("registration confirmed",
		zap.String("registration_id", id.String()),
		zap.String("protocol", protocolNumber))
	return nil
}

// Cancel marks a registration as CANCELLED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status == StatusCancelled {
		return nil
	}

	reg.Status = StatusCancelled
	if err := s.repo.Update(ctx, reg); err != nil {
		return err
	}

	s.logger.Info("registration cancelled", zap.String("registration_id", id.String()))
	return nil
}

// Get returns a registration by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByEvent returns the registrations of an event.
func (s *Service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Registration, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

// ListByAthlete returns an athlete's registrations.
func (s *Service) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Registration, error) {
	return s.repo.ListByAthlete(ctx, athleteID)
}
