package membership

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

type memRepository struct {
	byID map[uuid.UUID]*Membership
}

func newMemRepository() *memRepository {
	return &memRepository{byID: make(map[uuid.UUID]*Membership)}
}

func (m *memRepository) Create(ctx context.Context, membership *Membership) error {
	m.byID[membership.ID] = membership
	return nil
}

func (m *memRepository) Update(ctx context.Context, membership *Membership) error {
	m.byID[membership.ID] = membership
	return nil
}

func (m *memRepository) GetByID(ctx context.Context, id uuid.UUID) (*Membership, error) {
	membership, ok := m.byID[id]
	if !ok {
		return nil, ErrMembershipNotFound
	}
	return membership, nil
}

func (m *memRepository) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]*Membership, error) {
	var out []*Membership
	for _, membership := range m.byID {
		if membership.AthleteID != nil && *membership.AthleteID == athleteID {
			out = append(out, membership)
		}
	}
	return out, nil
}

func (m *memRepository) ListByClub(ctx context.Context, clubID uuid.UUID) ([]*Membership, error) {
	var out []*Membership
	for _, membership := range m.byID {
		if membership.ClubID != nil && *membership.ClubID == clubID {
			out = append(out, membership)
		}
	}
	return out, nil
}

func newTestService() *Service {
	svc := NewService(newMemRepository(), zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestActivate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	athleteID := uuid.New()

	m, err := svc.Create(ctx, &CreateInput{Kind: KindAthlete, AthleteID: &athleteID})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, 2025, m.Year)

	require.NoError(t, svc.Activate(ctx, m.ID, "FIL2025000001"))

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, "FIL2025000001", got.ProtocolNumber)
	require.NotNil(t, got.ValidUntil)
	assert.Equal(t, 2025, got.ValidUntil.Year())
	assert.Equal(t, time.December, got.ValidUntil.Month())

	// Activating again is a no-op.
	require.NoError(t, svc.Activate(ctx, m.ID, "FIL2025000001"))
}

func TestActivateCancelled(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	clubID := uuid.New()

	m, err := svc.Create(ctx, &CreateInput{Kind: KindClub, ClubID: &clubID})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, m.ID))

	assert.ErrorIs(t, svc.Activate(ctx, m.ID, ""), ErrCancelled)
}

func TestPaymentEventHandlerActivates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	athleteID := uuid.New()

	m, err := svc.Create(ctx, &CreateInput{Kind: KindAthlete, AthleteID: &athleteID})
	require.NoError(t, err)

	handler := NewPaymentEventHandler(svc, zap.NewNop())

	// A registration event is ignored.
	ignored := events.NewPaymentConfirmedEvent(
		uuid.New(), m.ID, events.EntityEventRegistration, "EVT2025000001", "mercadopago", 15000,
	)
	require.NoError(t, handler.Handle(ignored))
	got, _ := svc.Get(ctx, m.ID)
	assert.Equal(t, StatusPending, got.Status)

	// A membership event activates.
	confirmed := events.NewPaymentConfirmedEvent(
		uuid.New(), m.ID, events.EntityAthleteMembership, "FIL2025000002", "mercadopago", 9900,
	)
	require.NoError(t, handler.Handle(confirmed))
	got, _ = svc.Get(ctx, m.ID)
	assert.Equal(t, StatusActive, got.Status)
}

func TestPaymentEventHandlerClubAffiliation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	clubID := uuid.New()

	m, err := svc.Create(ctx, &CreateInput{Kind: KindClub, ClubID: &clubID})
	require.NoError(t, err)

	handler := NewPaymentEventHandler(svc, zap.NewNop())
	confirmed := events.NewPaymentConfirmedEvent(
		uuid.New(), m.ID, events.EntityClubAffiliation, "CLB2025000001", "pagseguro", 50000,
	)
	require.NoError(t, handler.Handle(confirmed))

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, "CLB2025000001", got.ProtocolNumber)
}
