package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for notification data access.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListPending(ctx context.Context, limit int) ([]*Notification, error)
	RecordAttempt(ctx context.Context, n *Notification, attempt *Attempt) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (r *repository) ListPending(ctx context.Context, limit int) ([]*Notification, error) {
	var notifications []*Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	return notifications, nil
}

// RecordAttempt persists a delivery attempt together with the updated
// notification status and attempt count.
func (r *repository) RecordAttempt(ctx context.Context, n *Notification, attempt *Attempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return fmt.Errorf("create notification attempt: %w", err)
		}

		updates := map[string]any{
			"attempts": n.Attempts,
			"status":   n.Status,
		}
		if n.SentAt != nil {
			updates["sent_at"] = *n.SentAt
		}
		updates["updated_at"] = time.Now()
		if err := tx.Model(&Notification{}).Where("id = ?", n.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		return nil
	})
}
