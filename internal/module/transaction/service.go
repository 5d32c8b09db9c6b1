package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateInput is the input for recording a ledger entry.
type CreateInput struct {
	Type           string
	EntityType     string
	EntityID       uuid.UUID
	Amount         int64
	Currency       string
	PaymentID      string
	ProtocolNumber string
	Provider       string
	Metadata       map[string]any
}

// Service records and queries the payment ledger.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new transaction service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create records a new ledger entry. A duplicate payment ID is rejected
// with ErrDuplicatePaymentID.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Transaction, error) {
	t := &Transaction{
		ID:             uuid.New(),
		Type:           in.Type,
		EntityType:     in.EntityType,
		EntityID:       in.EntityID,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Status:         StatusPending,
		PaymentID:      in.PaymentID,
		ProtocolNumber: in.ProtocolNumber,
		Provider:       in.Provider,
		Metadata:       in.Metadata,
	}
	if t.Currency == "" {
		t.Currency = "BRL"
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		zap.String("payment_id", t.PaymentID),
		zap.String("entity_type", t.EntityType),
		zap.Int64("amount", t.Amount))
	return t, nil
}

// UpdateStatus transitions a transaction's status by payment ID, keeping
// a status-change event for the history.
func (s *Service) UpdateStatus(ctx context.Context, paymentID, status, reason string) (*Transaction, error) {
	t, err := s.repo.UpdateStatusByPaymentID(ctx, paymentID, status, reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction status updated",
		zap.String("payment_id", paymentID),
		zap.String("status", status))
	return t, nil
}

// GetByPaymentID returns a transaction with its status history.
func (s *Service) GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error) {
	return s.repo.GetByPaymentID(ctx, paymentID)
}

// ListByEntity returns the transactions linked to an entity.
func (s *Service) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Transaction, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// List returns a filtered, paginated page of the ledger.
func (s *Service) List(ctx context.Context, filter *ListFilter) (*ListResult, error) {
	return s.repo.List(ctx, filter)
}

// Stats aggregates the ledger over a date range.
func (s *Service) Stats(ctx context.Context, from, to time.Time) (*Stats, error) {
	return s.repo.Stats(ctx, from, to)
}
