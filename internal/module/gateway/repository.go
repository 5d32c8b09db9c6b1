package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for gateway configuration data access.
type Repository interface {
	Create(ctx context.Context, cfg *GatewayConfig) error
	Update(ctx context.Context, cfg *GatewayConfig) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*GatewayConfig, error)
	List(ctx context.Context) ([]*GatewayConfig, error)
	ListActive(ctx context.Context) ([]*GatewayConfig, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new gateway repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, cfg *GatewayConfig) error {
	if err := r.db.WithContext(ctx).Create(cfg).Error; err != nil {
		return fmt.Errorf("create gateway config: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, cfg *GatewayConfig) error {
	if err := r.db.WithContext(ctx).Save(cfg).Error; err != nil {
		return fmt.Errorf("update gateway config: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&GatewayConfig{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete gateway config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*GatewayConfig, error) {
	var cfg GatewayConfig
	err := r.db.WithContext(ctx).First(&cfg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatewayNotFound
		}
		return nil, fmt.Errorf("get gateway config: %w", err)
	}
	return &cfg, nil
}

func (r *repository) List(ctx context.Context) ([]*GatewayConfig, error) {
	var configs []*GatewayConfig
	err := r.db.WithContext(ctx).
		Order("priority DESC, created_at ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("list gateway configs: %w", err)
	}
	return configs, nil
}

func (r *repository) ListActive(ctx context.Context) ([]*GatewayConfig, error) {
	var configs []*GatewayConfig
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("priority DESC, created_at ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("list active gateway configs: %w", err)
	}
	return configs, nil
}
