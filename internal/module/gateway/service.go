package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/module/gateway/provider"
	"github.com/fedpay/server/internal/shared/cache"
)

const activeGatewayCachePrefix = "gateway:active:"

// Service manages gateway configurations and resolves the gateway to
// use for each payment.
type Service struct {
	repo         Repository
	cache        redis.UniversalClient
	cacheTTL     time.Duration
	forceSandbox bool
	logger       *zap.Logger
}

// NewService creates a new gateway service. The cache client may be nil,
// in which case every resolution hits the database.
func NewService(repo Repository, cacheClient redis.UniversalClient, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Create registers a new gateway. Credentials are validated by building
// a provider client before anything is persisted.
func (s *Service) Create(ctx context.Context, req *CreateGatewayRequest) (*GatewayConfig, error) {
	for _, t := range req.EntityTypes {
		if !IsValidEntityType(t) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, t)
		}
	}

	cfg := &GatewayConfig{
		ID:          uuid.New(),
		Provider:    req.Provider,
		Label:       req.Label,
		Active:      req.Active,
		Priority:    req.Priority,
		Sandbox:     req.Sandbox,
		Methods:     req.Methods,
		EntityTypes: req.EntityTypes,
		Credentials: req.Credentials,
	}

	if _, err := NewClient(cfg); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("gateway registered",
		zap.String("gateway_id", cfg.ID.String()),
		zap.String("provider", cfg.Provider),
		zap.Bool("active", cfg.Active))
	return cfg, nil
}

// Update applies a partial update to a gateway configuration.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateGatewayRequest) (*GatewayConfig, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		cfg.Label = *req.Label
	}
	if req.Active != nil {
		cfg.Active = *req.Active
	}
	if req.Priority != nil {
		cfg.Priority = *req.Priority
	}
	if req.Sandbox != nil {
		cfg.Sandbox = *req.Sandbox
	}
	if req.Methods != nil {
		cfg.Methods = req.Methods
	}
	if req.EntityTypes != nil {
		for _, t := range req.EntityTypes {
			if !IsValidEntityType(t) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, t)
			}
		}
		cfg.EntityTypes = req.EntityTypes
	}
	if req.Credentials != nil {
		cfg.Credentials = req.Credentials
	}

	if _, err := NewClient(cfg); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("gateway updated", zap.String("gateway_id", cfg.ID.String()))
	return cfg, nil
}

// Delete removes a gateway configuration.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	s.logger.Info("gateway deleted", zap.String("gateway_id", id.String()))
	return nil
}

// Get returns a gateway configuration by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*GatewayConfig, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all gateway configurations ordered by priority.
func (s *Service) List(ctx context.Context) ([]*GatewayConfig, error) {
	return s.repo.List(ctx)
}

// ActiveGateway resolves the gateway that handles payments for the
// given entity type: the highest-priority active config whose entity
// type list includes it. The resolution is cached.
func (s *Service) ActiveGateway(ctx context.Context, entityType string) (*GatewayConfig, error) {
	if !IsValidEntityType(entityType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, entityType)
	}

	if s.cache != nil {
		var cached GatewayConfig
		err := cache.GetJSON(ctx, s.cache, activeGatewayCachePrefix+entityType, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("gateway cache read failed", zap.Error(err))
		}
	}

	configs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	for _, cfg := range configs {
		if !cfg.SupportsEntityType(entityType) {
			continue
		}
		if s.cache != nil {
			if err := s.setCached(ctx, entityType, cfg); err != nil {
				s.logger.Warn("gateway cache write failed", zap.Error(err))
			}
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoActiveGateway, entityType)
}

// ForceSandbox makes every provider client operate in sandbox mode
// regardless of the per-gateway flag. Used in staging environments.
func (s *Service) ForceSandbox() {
	s.forceSandbox = true
}

func (s *Service) buildClient(cfg *GatewayConfig) (provider.Client, error) {
	if s.forceSandbox && !cfg.Sandbox {
		c := *cfg
		c.Sandbox = true
		return NewClient(&c)
	}
	return NewClient(cfg)
}

// ClientFor resolves entityType to its active gateway and builds the
// provider client for it.
func (s *Service) ClientFor(ctx context.Context, entityType string) (*GatewayConfig, provider.Client, error) {
	cfg, err := s.ActiveGateway(ctx, entityType)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.buildClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// ClientForProvider builds a client from the active configuration of a
// named provider. Webhook dispatch resolves by provider, not entity
// type, because the callback identifies only its sender.
func (s *Service) ClientForProvider(ctx context.Context, providerName string) (*GatewayConfig, provider.Client, error) {
	configs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, cfg := range configs {
		if cfg.Provider != providerName {
			continue
		}
		client, err := s.buildClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return cfg, client, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrGatewayNotFound, providerName)
}

func (s *Service) setCached(ctx context.Context, entityType string, cfg *GatewayConfig) error {
	return cache.SetJSON(ctx, s.cache, activeGatewayCachePrefix+entityType, cfg, s.cacheTTL)
}

// invalidateCache drops every cached resolution. Called after any
// configuration change.
func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(ValidEntityTypes))
	for _, t := range ValidEntityTypes {
		keys = append(keys, activeGatewayCachePrefix+t)
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("gateway cache invalidation failed", zap.Error(err))
	}
}
