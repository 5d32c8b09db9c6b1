package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/module/gateway"
	"github.com/fedpay/server/internal/module/gateway/provider"
	"github.com/fedpay/server/internal/module/protocol"
	"github.com/fedpay/server/internal/module/transaction"
	"github.com/fedpay/server/internal/shared/cache"
	"github.com/fedpay/server/internal/shared/config"
	apperrors "github.com/fedpay/server/internal/shared/errors"
	"github.com/fedpay/server/internal/shared/events"
	"github.com/fedpay/server/internal/shared/metrics"
)

const installmentCachePrefix = "installments:"

// Service orchestrates payments: it resolves the gateway, creates the
// remote payment, and keeps the local Payment/Transaction/Protocol
// records in sync.
type Service struct {
	repo      Repository
	gateways  GatewayResolver
	protocols ProtocolGenerator
	ledger    Ledger
	bus       EventPublisher
	cache     redis.UniversalClient
	metrics   *metrics.Metrics
	cfg       *config.PaymentsConfig
	logger    *zap.Logger
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	gateways GatewayResolver,
	protocols ProtocolGenerator,
	ledger Ledger,
	bus EventPublisher,
	cacheClient redis.UniversalClient,
	m *metrics.Metrics,
	cfg *config.PaymentsConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		gateways:  gateways,
		protocols: protocols,
		ledger:    ledger,
		bus:       bus,
		cache:     cacheClient,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Checkout starts a payment: active gateway for the entity type, remote
// payment at the provider, then local Payment, Protocol and Transaction
// records.
func (s *Service) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	if !gateway.IsValidEntityType(req.EntityType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, req.EntityType)
	}

	cfg, client, err := s.gateways.ClientFor(ctx, req.EntityType)
	if err != nil {
		return nil, err
	}
	if !cfg.SupportsMethod(provider.PaymentMethod(req.Method)) {
		return nil, fmt.Errorf("%w: %s via %s", ErrMethodNotSupported, req.Method, cfg.Provider)
	}

	paymentID := uuid.New()
	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresIn) * time.Minute)
		expiresAt = &t
	}

	result, err := client.CreatePayment(ctx, &provider.CreatePaymentInput{
		Reference:   paymentID.String(),
		Amount:      req.Amount,
		Description: req.Description,
		Method:      provider.PaymentMethod(req.Method),
		Payer: provider.Payer{
			Name:     req.Payer.Name,
			Email:    req.Payer.Email,
			Document: req.Payer.Document,
		},
		NotifyURL: s.webhookURL(cfg.Provider),
		ReturnURL: req.ReturnURL,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.logger.Error("provider payment creation failed",
			zap.String("provider", cfg.Provider),
			zap.Error(err))
		return nil, apperrors.Upstream(err.Error(), err)
	}

	proto, err := s.protocols.Generate(ctx, &protocol.GenerateInput{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		PaymentID:  paymentID.String(),
	})
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:             paymentID,
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		PayerName:      req.Payer.Name,
		PayerEmail:     req.Payer.Email,
		PayerPhone:     req.Payer.Phone,
		Amount:         req.Amount,
		Currency:       "BRL",
		Method:         req.Method,
		Status:         result.Status,
		Provider:       cfg.Provider,
		GatewayID:      cfg.ID,
		ExternalID:     result.ExternalID,
		ProtocolNumber: proto.Number,
		PaymentURL:     result.PaymentURL,
		QRCode:         result.QRCode,
		QRCodeBase64:   result.QRCodeBase64,
		RawPayload:     result.RawPayload,
		ExpiresAt:      expiresAt,
	}
	p.SetEntityLink()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Create(ctx, &transaction.CreateInput{
		Type:           "payment",
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Amount:         req.Amount,
		Currency:       "BRL",
		PaymentID:      paymentID.String(),
		ProtocolNumber: proto.Number,
		Provider:       cfg.Provider,
	}); err != nil {
		return nil, err
	}

	s.metrics.PaymentsCreated.WithLabelValues(cfg.Provider, req.Method).Inc()
	s.logger.Info("payment created",
		zap.String("payment_id", paymentID.String()),
		zap.String("provider", cfg.Provider),
		zap.String("protocol", proto.Number),
		zap.Int64("amount", req.Amount))

	return &CheckoutResponse{
		PaymentID:      paymentID,
		Status:         p.Status,
		ProtocolNumber: proto.Number,
		PaymentURL:     result.PaymentURL,
		QRCode:         result.QRCode,
		QRCodeBase64:   result.QRCodeBase64,
		ExpiresAt:      expiresAt,
	}, nil
}

// ProcessCard charges a tokenized card directly. Card payments settle
// synchronously, so a confirmed or failed result is applied immediately
// instead of waiting for the webhook.
func (s *Service) ProcessCard(ctx context.Context, req *CardPaymentRequest) (*CardPaymentResponse, error) {
	if !gateway.IsValidEntityType(req.EntityType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, req.EntityType)
	}

	cfg, client, err := s.gateways.ClientFor(ctx, req.EntityType)
	if err != nil {
		return nil, err
	}
	if !cfg.SupportsMethod(provider.MethodCard) {
		return nil, fmt.Errorf("%w: card via %s", ErrMethodNotSupported, cfg.Provider)
	}

	paymentID := uuid.New()
	result, err := client.ProcessCardPayment(ctx, &provider.CardPaymentInput{
		Reference:    paymentID.String(),
		Amount:       req.Amount,
		CardToken:    req.CardToken,
		Bin:          req.Bin,
		Installments: req.Installments,
		MethodID:     req.MethodID,
		Payer: provider.Payer{
			Name:     req.Payer.Name,
			Email:    req.Payer.Email,
			Document: req.Payer.Document,
		},
		Description: req.Description,
	})
	if err != nil {
		s.logger.Error("card payment failed",
			zap.String("provider", cfg.Provider),
			zap.Error(err))
		return nil, apperrors.Upstream(err.Error(), err)
	}

	proto, err := s.protocols.Generate(ctx, &protocol.GenerateInput{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		PaymentID:  paymentID.String(),
	})
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:             paymentID,
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		PayerName:      req.Payer.Name,
		PayerEmail:     req.Payer.Email,
		PayerPhone:     req.Payer.Phone,
		Amount:         req.Amount,
		Currency:       "BRL",
		Method:         string(provider.MethodCard),
		Status:         StatusPending,
		StatusDetail:   result.StatusDetail,
		Provider:       cfg.Provider,
		GatewayID:      cfg.ID,
		ExternalID:     result.ExternalID,
		ProtocolNumber: proto.Number,
		RawPayload:     result.RawPayload,
	}
	p.SetEntityLink()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Create(ctx, &transaction.CreateInput{
		Type:           "payment",
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		Amount:         req.Amount,
		Currency:       "BRL",
		PaymentID:      paymentID.String(),
		ProtocolNumber: proto.Number,
		Provider:       cfg.Provider,
	}); err != nil {
		return nil, err
	}

	s.metrics.PaymentsCreated.WithLabelValues(cfg.Provider, string(provider.MethodCard)).Inc()

	if result.Status != StatusPending {
		if err := s.applyStatus(ctx, p, result.Status, result.StatusDetail); err != nil {
			s.logger.Error("apply card payment status failed",
				zap.String("payment_id", paymentID.String()),
				zap.Error(err))
			return nil, err
		}
	}

	return &CardPaymentResponse{
		PaymentID:      paymentID,
		Status:         p.Status,
		StatusDetail:   result.StatusDetail,
		ProtocolNumber: proto.Number,
	}, nil
}

// InstallmentOptions returns the installment plans the active gateway
// offers for an amount. Lookups are cached per provider/amount/bin.
func (s *Service) InstallmentOptions(ctx context.Context, entityType string, amount int64, methodID, bin string) (*InstallmentsResponse, error) {
	if !gateway.IsValidEntityType(entityType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntityType, entityType)
	}

	cfg, client, err := s.gateways.ClientFor(ctx, entityType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s:%d:%s:%s", installmentCachePrefix, cfg.Provider, amount, methodID, bin)
	if s.cache != nil {
		var cached InstallmentsResponse
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			return &cached, nil
		}
	}

	options, err := client.GetInstallmentOptions(ctx, amount, methodID, bin)
	if err != nil {
		return nil, apperrors.Upstream(err.Error(), err)
	}

	resp := &InstallmentsResponse{Provider: cfg.Provider, Options: options}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, resp, s.cfg.InstallmentCacheTTL); err != nil {
			s.logger.Warn("installment cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// GetPayment returns a payment by ID.
func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByEntity returns the payments linked to an entity.
func (s *Service) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// WebhookOutcome is the result of processing one provider callback.
type WebhookOutcome struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Status    string    `json:"status"`
	Duplicate bool      `json:"duplicate"`
}

// ProcessWebhook validates, deduplicates, and applies one provider
// callback. An invalid signature aborts before any state is touched.
func (s *Service) ProcessWebhook(ctx context.Context, providerName string, payload []byte, signature, timestamp string) (*WebhookOutcome, error) {
	cfg, client, err := s.gateways.ClientForProvider(ctx, providerName)
	if err != nil {
		return nil, err
	}

	if err := client.ValidateWebhook(payload, signature, timestamp); err != nil {
		s.logger.Warn("webhook signature validation failed",
			zap.String("provider", providerName),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}

	eventKey := webhookEventKey(providerName, payload)
	if existing, err := s.repo.GetWebhookEvent(ctx, eventKey); err != nil {
		return nil, err
	} else if existing != nil && existing.Processed {
		var paymentID uuid.UUID
		if existing.PaymentID != nil {
			paymentID = *existing.PaymentID
		}
		return &WebhookOutcome{PaymentID: paymentID, Duplicate: true}, nil
	}

	event := &WebhookEvent{
		ID:         uuid.New(),
		Provider:   providerName,
		EventKey:   eventKey,
		ReceivedAt: time.Now(),
	}
	if err := s.repo.CreateWebhookEvent(ctx, event); err != nil && !errors.Is(err, ErrWebhookAlreadyProcessed) {
		return nil, err
	}

	data, err := client.ParseWebhookData(ctx, payload)
	if err != nil {
		s.markWebhookEvent(ctx, eventKey, nil, err)
		return nil, apperrors.BadRequest(fmt.Sprintf("unparseable webhook payload: %v", err))
	}

	p, err := s.resolvePayment(ctx, cfg.Provider, data)
	if err != nil {
		s.markWebhookEvent(ctx, eventKey, nil, err)
		return nil, err
	}

	if err := s.applyStatus(ctx, p, data.Status, ""); err != nil {
		s.markWebhookEvent(ctx, eventKey, &p.ID, err)
		return nil, err
	}

	s.markWebhookEvent(ctx, eventKey, &p.ID, nil)
	return &WebhookOutcome{PaymentID: p.ID, Status: p.Status}, nil
}

// resolvePayment locates the local payment a callback refers to, by our
// reference first and the provider's ID second.
func (s *Service) resolvePayment(ctx context.Context, providerName string, data *provider.WebhookData) (*Payment, error) {
	if data.Reference != "" {
		if id, err := uuid.Parse(data.Reference); err == nil {
			p, err := s.repo.GetByID(ctx, id)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, ErrPaymentNotFound) {
				return nil, err
			}
		}
	}
	if data.ExternalID != "" {
		return s.repo.GetByExternalID(ctx, providerName, data.ExternalID)
	}
	return nil, ErrPaymentNotFound
}

// applyStatus transitions a payment and its transaction/protocol to a
// new status and publishes the domain event. Payments already in a
// terminal state are left untouched.
func (s *Service) applyStatus(ctx context.Context, p *Payment, status, detail string) error {
	if p.Status == status || p.IsTerminal() {
		return nil
	}

	p.Status = status
	if detail != "" {
		p.StatusDetail = detail
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	if _, err := s.ledger.UpdateStatus(ctx, p.ID.String(), status, "provider webhook"); err != nil && !errors.Is(err, transaction.ErrTransactionNotFound) {
		return err
	}

	switch status {
	case StatusConfirmed:
		if p.ProtocolNumber != "" {
			if err := s.protocols.UpdateStatus(ctx, p.ProtocolNumber, protocol.StatusCompleted); err != nil && !errors.Is(err, protocol.ErrProtocolNotFound) {
				return err
			}
		}
		confirmed := events.NewPaymentConfirmedEvent(
			p.ID, p.EntityID, p.EntityType, p.ProtocolNumber, p.Provider, p.Amount,
		)
		confirmed.PayerName = p.PayerName
		confirmed.PayerEmail = p.PayerEmail
		confirmed.PayerPhone = p.PayerPhone
		if err := s.bus.Publish(confirmed); err != nil {
			return fmt.Errorf("payment confirmed side effects: %w", err)
		}
	case StatusFailed, StatusExpired:
		if p.ProtocolNumber != "" {
			if err := s.protocols.UpdateStatus(ctx, p.ProtocolNumber, protocol.StatusCancelled); err != nil && !errors.Is(err, protocol.ErrProtocolNotFound) {
				return err
			}
		}
		if err := s.bus.Publish(events.NewPaymentFailedEvent(
			p.ID, p.EntityID, p.EntityType, detail, p.Provider,
		)); err != nil {
			return fmt.Errorf("payment failed side effects: %w", err)
		}
	}

	s.logger.Info("payment status applied",
		zap.String("payment_id", p.ID.String()),
		zap.String("status", status))
	return nil
}

func (s *Service) markWebhookEvent(ctx context.Context, eventKey string, paymentID *uuid.UUID, processErr error) {
	if err := s.repo.MarkWebhookEventProcessed(ctx, eventKey, paymentID, processErr); err != nil {
		s.logger.Error("mark webhook event failed", zap.Error(err))
	}
}

func (s *Service) webhookURL(providerName string) string {
	return fmt.Sprintf("%s/api/webhooks/payment?provider=%s", s.cfg.PublicBaseURL, providerName)
}

// webhookEventKey derives the idempotency key for a callback from its
// exact payload bytes.
func webhookEventKey(providerName string, payload []byte) string {
	digest := sha256.Sum256(append([]byte(providerName+":"), payload...))
	return hex.EncodeToString(digest[:])
}
