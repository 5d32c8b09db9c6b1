package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

type stubRepository struct {
	configs []*GatewayConfig
	created *GatewayConfig
	updated *GatewayConfig
	deleted uuid.UUID
}

func (s *stubRepository) Create(ctx context.Context, cfg *GatewayConfig) error {
	s.created = cfg
	s.configs = append(s.configs, cfg)
	return nil
}

func (s *stubRepository) Update(ctx context.Context, cfg *GatewayConfig) error {
	s.updated = cfg
	return nil
}

func (s *stubRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = id
	return nil
}

func (s *stubRepository) GetByID(ctx context.Context, id uuid.UUID) (*GatewayConfig, error) {
	for _, cfg := range s.configs {
		if cfg.ID == id {
			return cfg, nil
		}
	}
	return nil, ErrGatewayNotFound
}

func (s *stubRepository) List(ctx context.Context) ([]*GatewayConfig, error) {
	return s.configs, nil
}

func (s *stubRepository) ListActive(ctx context.Context) ([]*GatewayConfig, error) {
	var active []*GatewayConfig
	for _, cfg := range s.configs {
		if cfg.Active {
			active = append(active, cfg)
		}
	}
	return active, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, time.Minute, zap.NewNop())
}

func mpGateway(priority int, active bool, entityTypes ...string) *GatewayConfig {
	return &GatewayConfig{
		ID:          uuid.New(),
		Provider:    ProviderMercadoPago,
		Label:       "Mercado Pago",
		Active:      active,
		Priority:    priority,
		EntityTypes: entityTypes,
		Credentials: json.RawMessage(`{"access_token":"TEST-123"}`),
	}
}

func TestActiveGatewaySelection(t *testing.T) {
	// Registrations and memberships go through Mercado Pago, club
	// affiliations through PagSeguro, everything else falls back to the
	// unrestricted gateway.
	mp := mpGateway(10, true, events.EntityEventRegistration, events.EntityAthleteMembership)
	ps := &GatewayConfig{
		ID:          uuid.New(),
		Provider:    ProviderPagSeguro,
		Label:       "PagBank",
		Active:      true,
		Priority:    5,
		EntityTypes: []string{events.EntityClubAffiliation},
		Credentials: json.RawMessage(`{"token":"ps-token"}`),
	}
	fallback := &GatewayConfig{
		ID:          uuid.New(),
		Provider:    ProviderStripe,
		Label:       "Stripe",
		Active:      true,
		Priority:    1,
		Credentials: json.RawMessage(`{"api_key":"sk_test"}`),
	}

	// ListActive returns highest priority first; the stub preserves
	// insertion order, so insert accordingly.
	repo := &stubRepository{configs: []*GatewayConfig{mp, ps, fallback}}
	svc := newTestService(repo)
	ctx := context.Background()

	cfg, err := svc.ActiveGateway(ctx, events.EntityEventRegistration)
	require.NoError(t, err)
	assert.Equal(t, mp.ID, cfg.ID)

	cfg, err = svc.ActiveGateway(ctx, events.EntityClubAffiliation)
	require.NoError(t, err)
	assert.Equal(t, ps.ID, cfg.ID)

	cfg, err = svc.ActiveGateway(ctx, events.EntityOther)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, cfg.ID)
}

func TestActiveGatewayPriority(t *testing.T) {
	low := mpGateway(1, true)
	high := mpGateway(10, true)

	repo := &stubRepository{configs: []*GatewayConfig{high, low}}
	svc := newTestService(repo)

	cfg, err := svc.ActiveGateway(context.Background(), events.EntityEventRegistration)
	require.NoError(t, err)
	assert.Equal(t, high.ID, cfg.ID)
}

func TestActiveGatewayNoneActive(t *testing.T) {
	repo := &stubRepository{configs: []*GatewayConfig{mpGateway(1, false)}}
	svc := newTestService(repo)

	_, err := svc.ActiveGateway(context.Background(), events.EntityEventRegistration)
	assert.ErrorIs(t, err, ErrNoActiveGateway)
}

func TestActiveGatewayInvalidEntityType(t *testing.T) {
	svc := newTestService(&stubRepository{})

	_, err := svc.ActiveGateway(context.Background(), "SOMETHING_ELSE")
	assert.ErrorIs(t, err, ErrInvalidEntityType)
}

func TestCreateValidatesCredentials(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), &CreateGatewayRequest{
		Provider:    ProviderMercadoPago,
		Label:       "MP",
		Credentials: json.RawMessage(`{"public_key":"pk-only"}`),
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, repo.created)
}

func TestCreateRejectsUnknownEntityType(t *testing.T) {
	svc := newTestService(&stubRepository{})

	_, err := svc.Create(context.Background(), &CreateGatewayRequest{
		Provider:    ProviderMercadoPago,
		Label:       "MP",
		EntityTypes: []string{"TOURNAMENT"},
		Credentials: json.RawMessage(`{"access_token":"t"}`),
	})
	assert.ErrorIs(t, err, ErrInvalidEntityType)
}

func TestClientForProvider(t *testing.T) {
	mp := mpGateway(1, true)
	repo := &stubRepository{configs: []*GatewayConfig{mp}}
	svc := newTestService(repo)

	cfg, client, err := svc.ClientForProvider(context.Background(), ProviderMercadoPago)
	require.NoError(t, err)
	assert.Equal(t, mp.ID, cfg.ID)
	assert.Equal(t, "mercadopago", client.Name())

	_, _, err = svc.ClientForProvider(context.Background(), ProviderStripe)
	assert.ErrorIs(t, err, ErrGatewayNotFound)
}

func TestUpdatePartial(t *testing.T) {
	mp := mpGateway(1, false)
	repo := &stubRepository{configs: []*GatewayConfig{mp}}
	svc := newTestService(repo)

	active := true
	priority := 7
	cfg, err := svc.Update(context.Background(), mp.ID, &UpdateGatewayRequest{
		Active:   &active,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.True(t, cfg.Active)
	assert.Equal(t, 7, cfg.Priority)
	assert.Equal(t, "Mercado Pago", cfg.Label)
	require.NotNil(t, repo.updated)
}
