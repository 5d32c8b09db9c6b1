package transaction

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

type memRepository struct {
	byPaymentID map[string]*Transaction
	events      []*TransactionEvent
}

func newMemRepository() *memRepository {
	return &memRepository{byPaymentID: make(map[string]*Transaction)}
}

func (m *memRepository) Create(ctx context.Context, t *Transaction) error {
	if _, exists := m.byPaymentID[t.PaymentID]; exists {
		return ErrDuplicatePaymentID
	}
	t.CreatedAt = time.Now()
	m.byPaymentID[t.PaymentID] = t
	return nil
}

func (m *memRepository) GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error) {
	t, ok := m.byPaymentID[paymentID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

func (m *memRepository) UpdateStatusByPaymentID(ctx context.Context, paymentID, status, reason string) (*Transaction, error) {
	t, ok := m.byPaymentID[paymentID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	m.events = append(m.events, &TransactionEvent{
		TransactionID: t.ID,
		FromStatus:    t.Status,
		ToStatus:      status,
		Reason:        reason,
	})
	t.Status = status
	return t, nil
}

func (m *memRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range m.byPaymentID {
		if t.EntityType == entityType && t.EntityID == entityID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memRepository) List(ctx context.Context, filter *ListFilter) (*ListResult, error) {
	filter.Normalize()
	var out []*Transaction
	for _, t := range m.byPaymentID {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, t)
	}
	return &ListResult{Transactions: out, Total: int64(len(out)), Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *memRepository) Stats(ctx context.Context, from, to time.Time) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[string]int64)}
	for _, t := range m.byPaymentID {
		stats.Count++
		stats.TotalAmount += t.Amount
		stats.ByStatus[t.Status]++
	}
	return stats, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, zap.NewNop())
}

func TestCreateDuplicatePaymentID(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()

	in := &CreateInput{
		Type:       "payment",
		EntityType: events.EntityEventRegistration,
		EntityID:   uuid.New(),
		Amount:     15000,
		PaymentID:  "pay-123",
	}

	first, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, first.Status)
	assert.Equal(t, "BRL", first.Currency)

	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicatePaymentID)
}

func TestUpdateStatusRecordsEvent(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateInput{
		Type:       "payment",
		EntityType: events.EntityAthleteMembership,
		EntityID:   uuid.New(),
		Amount:     9900,
		PaymentID:  "pay-456",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, "pay-456", StatusConfirmed, "webhook")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	require.Len(t, repo.events, 1)
	assert.Equal(t, StatusPending, repo.events[0].FromStatus)
	assert.Equal(t, StatusConfirmed, repo.events[0].ToStatus)
	assert.Equal(t, "webhook", repo.events[0].Reason)
}

func TestUpdateStatusUnknownPaymentID(t *testing.T) {
	svc := newTestService(newMemRepository())

	_, err := svc.UpdateStatus(context.Background(), "missing", StatusFailed, "")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestStats(t *testing.T) {
	svc := newTestService(newMemRepository())
	ctx := context.Background()

	amounts := []int64{1000, 2500, 4000}
	for i, amount := range amounts {
		_, err := svc.Create(ctx, &CreateInput{
			Type:       "payment",
			EntityType: events.EntityClubAffiliation,
			EntityID:   uuid.New(),
			Amount:     amount,
			PaymentID:  fmt.Sprintf("pay-%d", i),
		})
		require.NoError(t, err)
	}
	_, err := svc.UpdateStatus(ctx, "pay-0", StatusConfirmed, "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, int64(7500), stats.TotalAmount)
	assert.Equal(t, int64(1), stats.ByStatus[StatusConfirmed])
	assert.Equal(t, int64(2), stats.ByStatus[StatusPending])
}

func TestListFilterNormalize(t *testing.T) {
	f := &ListFilter{Page: 0, PageSize: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
}
