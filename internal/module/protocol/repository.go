package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for protocol data access.
type Repository interface {
	// NextSequence atomically increments and returns the counter for
	// (entityType, year).
	NextSequence(ctx context.Context, entityType string, year int) (int64, error)

	Create(ctx context.Context, p *Protocol) error
	UpdateStatusByNumber(ctx context.Context, number, status string) error
	GetByNumber(ctx context.Context, number string) (*Protocol, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Protocol, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new protocol repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// NextSequence relies on the database's atomic upsert: insert the row
// at 1, or bump the existing counter, and read the result back in the
// same statement. Concurrent callers always observe distinct values.
func (r *repository) NextSequence(ctx context.Context, entityType string, year int) (int64, error) {
	seq := &Sequence{EntityType: entityType, Year: year, Counter: 1}
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "entity_type"}, {Name: "year"}},
				DoUpdates: clause.Assignments(map[string]any{
					"counter": gorm.Expr("protocol_sequences.counter + 1"),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "counter"}}},
		).
		Create(seq).Error
	if err != nil {
		return 0, fmt.Errorf("next protocol sequence: %w", err)
	}
	return seq.Counter, nil
}

func (r *repository) Create(ctx context.Context, p *Protocol) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create protocol: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatusByNumber(ctx context.Context, number, status string) error {
	result := r.db.WithContext(ctx).
		Model(&Protocol{}).
		Where("number = ?", number).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update protocol status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProtocolNotFound
	}
	return nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Protocol, error) {
	var p Protocol
	err := r.db.WithContext(ctx).First(&p, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProtocolNotFound
		}
		return nil, fmt.Errorf("get protocol: %w", err)
	}
	return &p, nil
}

func (r *repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Protocol, error) {
	var protocols []*Protocol
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&protocols).Error
	if err != nil {
		return nil, fmt.Errorf("list protocols by entity: %w", err)
	}
	return protocols, nil
}
