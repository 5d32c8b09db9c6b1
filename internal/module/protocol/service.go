package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateInput is the input for generating a protocol.
type GenerateInput struct {
	EntityType string
	EntityID   uuid.UUID
	PaymentID  string
	Metadata   map[string]any
}

// Service generates and tracks protocol numbers.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new protocol service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Generate assigns the next protocol number for the input's entity type
// in the current year and persists the protocol record. The format is
// {PREFIX}{YYYY}{sequence zero-padded to 6 digits}, e.g. EVT2025000123.
func (s *Service) Generate(ctx context.Context, in *GenerateInput) (*Protocol, error) {
	prefix, ok := prefixes[in.EntityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, in.EntityType)
	}

	year := s.now().Year()
	seq, err := s.repo.NextSequence(ctx, in.EntityType, year)
	if err != nil {
		return nil, err
	}

	p := &Protocol{
		ID:         uuid.New(),
		Number:     fmt.Sprintf("%s%d%06d", prefix, year, seq),
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		PaymentID:  in.PaymentID,
		Status:     StatusActive,
		Metadata:   in.Metadata,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("protocol generated",
		zap.String("number", p.Number),
		zap.String("entity_type", p.EntityType),
		zap.String("entity_id", p.EntityID.String()))
	return p, nil
}

// UpdateStatus updates a protocol's status by number.
func (s *Service) UpdateStatus(ctx context.Context, number, status string) error {
	return s.repo.UpdateStatusByNumber(ctx, number, status)
}

// GetByNumber returns a protocol by its number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Protocol, error) {
	return s.repo.GetByNumber(ctx, number)
}

// ListByEntity returns the protocols linked to an entity.
func (s *Service) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Protocol, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}
