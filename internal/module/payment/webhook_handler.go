package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/module/gateway"
	apperrors "github.com/fedpay/server/internal/shared/errors"
	"github.com/fedpay/server/internal/shared/metrics"
	"github.com/fedpay/server/internal/shared/response"
)

// WebhookHandler receives provider callbacks on the public webhook
// endpoint.
type WebhookHandler struct {
	service *Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *Service, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, metrics: m, logger: logger}
}

// RegisterRoutes registers the webhook route. It lives outside the
// authenticated API groups: providers authenticate via signatures.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/payment", h.Handle)
}

// Handle processes one provider callback. The provider is identified by
// the query string; the signature comes from the x-signature header
// (Stripe-Signature for Stripe). Invalid signatures are rejected with
// 401 before any state is touched; processing failures return 500 and
// rely on the provider's redelivery.
func (h *WebhookHandler) Handle(c *gin.Context) {
	providerName := c.Query("provider")
	if providerName == "" {
		h.metrics.WebhooksProcessed.WithLabelValues("unknown", "missing_provider").Inc()
		response.BadRequest(c, "missing provider")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}

	signature := c.GetHeader("x-signature")
	if signature == "" {
		signature = c.GetHeader("Stripe-Signature")
	}
	timestamp := c.GetHeader("x-timestamp")

	outcome, err := h.service.ProcessWebhook(c.Request.Context(), providerName, payload, signature, timestamp)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrGatewayNotFound):
			h.metrics.WebhooksProcessed.WithLabelValues(providerName, "unknown_gateway").Inc()
			response.NotFound(c, "no gateway configured for provider")
		case errors.Is(err, ErrInvalidWebhookSignature):
			h.metrics.WebhooksProcessed.WithLabelValues(providerName, "invalid_signature").Inc()
			response.Unauthorized(c, "invalid webhook signature")
		case errors.Is(err, ErrPaymentNotFound):
			h.metrics.WebhooksProcessed.WithLabelValues(providerName, "unknown_payment").Inc()
			response.NotFound(c, "payment not found")
		case errors.Is(err, apperrors.ErrBadRequest):
			h.metrics.WebhooksProcessed.WithLabelValues(providerName, "bad_payload").Inc()
			response.BadRequest(c, err.Error())
		default:
			h.metrics.WebhooksProcessed.WithLabelValues(providerName, "error").Inc()
			h.logger.Error("webhook processing failed",
				zap.String("provider", providerName),
				zap.Error(err))
			response.InternalError(c, "")
		}
		return
	}

	if outcome.Duplicate {
		h.metrics.WebhooksProcessed.WithLabelValues(providerName, "duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
		return
	}

	h.metrics.WebhooksProcessed.WithLabelValues(providerName, "processed").Inc()
	c.JSON(http.StatusOK, gin.H{
		"status":     "processed",
		"payment_id": outcome.PaymentID,
	})
}
