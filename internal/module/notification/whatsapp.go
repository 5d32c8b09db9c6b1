package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/config"
)

// WhatsAppSender delivers messages through the federation's WhatsApp
// HTTP gateway. The gateway is flaky enough to sit behind a circuit
// breaker: after repeated failures the worker fails fast and retries
// the queue later instead of piling up timeouts.
type WhatsAppSender struct {
	gatewayURL string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     *zap.Logger
}

// NewWhatsAppSender creates a new WhatsApp sender.
func NewWhatsAppSender(cfg *config.NotificationsConfig, logger *zap.Logger) *WhatsAppSender {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "whatsapp-gateway",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &WhatsAppSender{
		gatewayURL: cfg.WhatsAppGatewayURL,
		token:      cfg.WhatsAppToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    breaker,
		logger:     logger,
	}
}

// Channel returns the channel this sender serves.
func (s *WhatsAppSender) Channel() string {
	return ChannelWhatsApp
}

// Send posts the message to the gateway.
func (s *WhatsAppSender) Send(ctx context.Context, n *Notification) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		body, err := json.Marshal(map[string]string{
			"to":      n.Recipient,
			"message": n.Body,
		})
		if err != nil {
			return struct{}{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL+"/messages", bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("whatsapp gateway request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return struct{}{}, fmt.Errorf("whatsapp gateway: %s: %s", resp.Status, data)
		}
		return struct{}{}, nil
	})
	return err
}
