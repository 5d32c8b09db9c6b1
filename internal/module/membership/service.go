package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateInput is the input for creating a membership.
type CreateInput struct {
	Kind      string
	AthleteID *uuid.UUID
	ClubID    *uuid.UUID
	Year      int
}

// Service manages athlete memberships and club affiliations.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new membership service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create opens a PENDING membership for the given year.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Membership, error) {
	year := in.Year
	if year == 0 {
		year = s.now().Year()
	}

	m := &Membership{
		ID:        uuid.New(),
		Kind:      in.Kind,
		AthleteID: in.AthleteID,
		ClubID:    in.ClubID,
		Year:      year,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("membership created",
		zap.String("membership_id", m.ID.String()),
		zap.String("kind", m.Kind),
		zap.Int("year", m.Year))
	return m, nil
}

// Activate marks a membership ACTIVE until the end of its year.
// Activating twice is a no-op; a cancelled membership is not revived.
func (s *Service) Activate(ctx context.Context, id uuid.UUID, protocolNumber string) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == StatusActive {
		return nil
	}
	if m.Status == StatusCancelled {
		return ErrCancelled
	}

	now := s.now()
	validUntil := time.Date(m.Year, 12, 31, 23, 59, 59, 0, time.Local)
	m.Status = StatusActive
	m.ActivatedAt = &now
	m.ValidUntil = &validUntil
	if protocolNumber != "" {
		m.ProtocolNumber = protocolNumber
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}

	s.logger.Info("membership activated",
		zap.String("membership_id", id.String()),
		zap.String("protocol", protocolNumber),
		zap.Time("valid_until", validUntil))
	return nil
}

// Cancel marks a membership CANCELLED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == StatusCancelled {
		return nil
	}

	m.Status = StatusCancelled
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}

	s.logger.Info("membership cancelled", zap.String("membership_id", id.String()))
	return nil
}

// Get returns a membership by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Membership, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByAthlete returns an athlete's memberships.
func (s *Service) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Membership, error) {
	return s.repo.ListByAthlete(ctx, athleteID)
}

// ListByClub returns a club's affiliations.
func (s *Service) ListByClub(ctx context.Context, clubID uuid.UUID) ([]*Membership, error) {
	return s.repo.ListByClub(ctx, clubID)
}
