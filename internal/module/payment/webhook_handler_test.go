package payment

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/module/gateway/provider"
	"github.com/fedpay/server/internal/shared/metrics"
)

func newWebhookRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWebhookHandler(f.svc, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func postWebhook(r *gin.Engine, url string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookMissingProvider(t *testing.T) {
	f := newFixture(t)
	r := newWebhookRouter(t, f)

	w := postWebhook(r, "/api/webhooks/payment", []byte(`{}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookInvalidSignatureReturns401(t *testing.T) {
	f := newFixture(t)
	f.client.validateErr = fmt.Errorf("signature mismatch")
	r := newWebhookRouter(t, f)

	w := postWebhook(r, "/api/webhooks/payment?provider=mercadopago", []byte(`{"data":{"id":"1"}}`), map[string]string{
		"x-signature": "ts=1,v1=bad",
		"x-timestamp": "1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.repo.hooks)
}

func TestWebhookUnknownGatewayReturns404(t *testing.T) {
	f := newFixture(t)
	r := newWebhookRouter(t, f)

	w := postWebhook(r, "/api/webhooks/payment?provider=pagseguro", []byte(`{}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookProcessedAndReplayed(t *testing.T) {
	f := newFixture(t)
	f.client.createResult = &provider.CreatePaymentResult{ExternalID: "mp-1", Status: provider.StatusPending}

	resp, err := f.svc.Checkout(context.Background(), checkoutRequest())
	require.NoError(t, err)

	f.client.webhookData = &provider.WebhookData{
		Reference: resp.PaymentID.String(),
		Status:    provider.StatusConfirmed,
	}
	r := newWebhookRouter(t, f)

	payload := []byte(`{"data":{"id":"mp-1"}}`)
	headers := map[string]string{"x-signature": "sig"}

	w := postWebhook(r, "/api/webhooks/payment?provider=mercadopago", payload, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"processed"`)

	w = postWebhook(r, "/api/webhooks/payment?provider=mercadopago", payload, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already_processed")

	assert.Len(t, f.bus.published, 1)
}
