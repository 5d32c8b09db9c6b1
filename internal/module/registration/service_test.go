package registration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

type memRepository struct {
	byID map[uuid.UUID]*Registration
}

func newMemRepository() *memRepository {
	return &memRepository{byID: make(map[uuid.UUID]*Registration)}
}

func (m *memRepository) Create(ctx context.Context, r *Registration) error {
	m.byID[r.ID] = r
	return nil
}

func (m *memRepository) Update(ctx context.Context, r *Registration) error {
	m.byID[r.ID] = r
	return nil
}

func (m *memRepository) GetByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	return r, nil
}

func (m *memRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Registration, error) {
	var out []*Registration
	for _, r := range m.byID {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepository) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Registration, error) {
	var out []*Registration
	for _, r := range m.byID {
		if r.AthleteID == athleteID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memRepository) {
	repo := newMemRepository()
	return NewService(repo, zap.NewNop()), repo
}

func TestConfirm(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Create(ctx, &CreateInput{EventID: uuid.New(), AthleteID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reg.Status)

	require.NoError(t, svc.Confirm(ctx, reg.ID, "EVT2025000001"))

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, "EVT2025000001", got.ProtocolNumber)
	assert.NotNil(t, got.ConfirmedAt)

	// Confirming again is a no-op.
	require.NoError(t, svc.Confirm(ctx, reg.ID, "EVT2025000001"))
}

func TestConfirmCancelled(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Create(ctx, &CreateInput{EventID: uuid.New(), AthleteID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, reg.ID))

	assert.ErrorIs(t, svc.Confirm(ctx, reg.ID, ""), ErrCancelled)
}

func TestPaymentEventHandlerConfirms(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Create(ctx, &CreateInput{EventID: uuid.New(), AthleteID: uuid.New()})
	require.NoError(t, err)

	handler := NewPaymentEventHandler(svc, zap.NewNop())
	event := events.NewPaymentConfirmedEvent(
		uuid.New(), reg.ID, events.EntityEventRegistration, "EVT2025000007", "mercadopago", 15000,
	)
	require.NoError(t, handler.Handle(event))

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, "EVT2025000007", got.ProtocolNumber)
}

func TestPaymentEventHandlerIgnoresOtherEntityTypes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Create(ctx, &CreateInput{EventID: uuid.New(), AthleteID: uuid.New()})
	require.NoError(t, err)

	handler := NewPaymentEventHandler(svc, zap.NewNop())
	event := events.NewPaymentConfirmedEvent(
		uuid.New(), reg.ID, events.EntityAthleteMembership, "FIL2025000001", "pagseguro", 9900,
	)
	require.NoError(t, handler.Handle(event))

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestPaymentEventHandlerCancelsOnFailure(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Create(ctx, &CreateInput{EventID: uuid.New(), AthleteID: uuid.New()})
	require.NoError(t, err)

	handler := NewPaymentEventHandler(svc, zap.NewNop())
	event := events.NewPaymentFailedEvent(
		uuid.New(), reg.ID, events.EntityEventRegistration, "expired", "mercadopago",
	)
	require.NoError(t, handler.Handle(event))

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}
