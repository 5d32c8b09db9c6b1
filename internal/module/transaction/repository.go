package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for transaction data access.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error)
	UpdateStatusByPaymentID(ctx context.Context, paymentID, status, reason string) (*Transaction, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Transaction, error)
	List(ctx context.Context, filter *ListFilter) (*ListResult, error)
	Stats(ctx context.Context, from, to time.Time) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new transaction repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePaymentID
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error) {
	var t Transaction
	err := r.db.WithContext(ctx).
		Preload("Events").
		First(&t, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// UpdateStatusByPaymentID updates the status and appends a status-change
// event in one database transaction.
func (r *repository) UpdateStatusByPaymentID(ctx context.Context, paymentID, status, reason string) (*Transaction, error) {
	var t Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "payment_id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("get transaction: %w", err)
		}

		event := &TransactionEvent{
			ID:            uuid.New(),
			TransactionID: t.ID,
			FromStatus:    t.Status,
			ToStatus:      status,
			Reason:        reason,
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("create transaction event: %w", err)
		}

		t.Status = status
		if err := tx.Model(&t).Update("status", status).Error; err != nil {
			return fmt.Errorf("update transaction status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Transaction, error) {
	var transactions []*Transaction
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions by entity: %w", err)
	}
	return transactions, nil
}

func (r *repository) List(ctx context.Context, filter *ListFilter) (*ListResult, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&Transaction{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	var transactions []*Transaction
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &ListResult{
		Transactions: transactions,
		Total:        total,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
	}, nil
}

// Stats aggregates count, sum, and a status histogram over a date range.
func (r *repository) Stats(ctx context.Context, from, to time.Time) (*Stats, error) {
	base := r.db.WithContext(ctx).Model(&Transaction{})
	if !from.IsZero() {
		base = base.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		base = base.Where("created_at <= ?", to)
	}

	var totals struct {
		Count       int64
		TotalAmount int64
	}
	err := base.Session(&gorm.Session{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("transaction totals: %w", err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	err = base.Session(&gorm.Session{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("transaction status histogram: %w", err)
	}

	stats := &Stats{
		Count:       totals.Count,
		TotalAmount: totals.TotalAmount,
		ByStatus:    make(map[string]int64, len(rows)),
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}
	return stats, nil
}
