package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signMercadoPago(secret, dataID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "id:%s;ts:%s;", dataID, ts)
	return "ts=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestMercadoPagoValidateWebhook(t *testing.T) {
	client := NewMercadoPagoClient(&MercadoPagoConfig{
		AccessToken:   "TEST-token",
		WebhookSecret: "whsec",
	}, false)

	payload := []byte(`{"type":"payment","data":{"id":"12345"}}`)

	t.Run("valid signature", func(t *testing.T) {
		sig := signMercadoPago("whsec", "12345", "1704908010")
		assert.NoError(t, client.ValidateWebhook(payload, sig, "1704908010"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := signMercadoPago("other", "12345", "1704908010")
		assert.Error(t, client.ValidateWebhook(payload, sig, "1704908010"))
	})

	t.Run("tampered payload", func(t *testing.T) {
		sig := signMercadoPago("whsec", "12345", "1704908010")
		tampered := []byte(`{"type":"payment","data":{"id":"99999"}}`)
		assert.Error(t, client.ValidateWebhook(tampered, sig, "1704908010"))
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Error(t, client.ValidateWebhook(payload, "garbage", ""))
	})

	t.Run("missing secret", func(t *testing.T) {
		bare := NewMercadoPagoClient(&MercadoPagoConfig{AccessToken: "t"}, false)
		sig := signMercadoPago("whsec", "12345", "1")
		assert.Error(t, bare.ValidateWebhook(payload, sig, "1"))
	})
}

func TestMercadoPagoParseWebhookData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/777", r.URL.Path)
		assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"id": 777,
			"status": "approved",
			"external_reference": "b2f1f9d0-0000-0000-0000-000000000001",
			"transaction_amount": 150.50,
			"payment_type_id": "bank_transfer"
		}`)
	}))
	defer srv.Close()

	client := NewMercadoPagoClient(&MercadoPagoConfig{AccessToken: "TEST-token"}, false)
	client.baseURL = srv.URL

	data, err := client.ParseWebhookData(context.Background(), []byte(`{"type":"payment","data":{"id":"777"}}`))
	require.NoError(t, err)

	assert.Equal(t, "777", data.ExternalID)
	assert.Equal(t, "b2f1f9d0-0000-0000-0000-000000000001", data.Reference)
	assert.Equal(t, StatusConfirmed, data.Status)
	assert.Equal(t, int64(15050), data.Amount)
	assert.Equal(t, MethodPix, data.Method)
}

func TestMercadoPagoParseWebhookData_Unsupported(t *testing.T) {
	client := NewMercadoPagoClient(&MercadoPagoConfig{AccessToken: "t"}, false)

	_, err := client.ParseWebhookData(context.Background(), []byte(`{"type":"plan","data":{"id":"1"}}`))
	assert.Error(t, err)

	_, err = client.ParseWebhookData(context.Background(), []byte(`{"type":"payment","data":{}}`))
	assert.Error(t, err)
}

func TestMercadoPagoCreatePixPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments", r.URL.Path)
		fmt.Fprint(w, `{
			"id": 555,
			"status": "pending",
			"point_of_interaction": {
				"transaction_data": {
					"qr_code": "00020126pix-code",
					"qr_code_base64": "aGVsbG8=",
					"ticket_url": "https://mp.example/ticket"
				}
			}
		}`)
	}))
	defer srv.Close()

	client := NewMercadoPagoClient(&MercadoPagoConfig{AccessToken: "t"}, false)
	client.baseURL = srv.URL

	result, err := client.CreatePayment(context.Background(), &CreatePaymentInput{
		Reference:   "ref-1",
		Amount:      10000,
		Description: "Inscrição Campeonato Estadual",
		Method:      MethodPix,
	})
	require.NoError(t, err)

	assert.Equal(t, "555", result.ExternalID)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "00020126pix-code", result.QRCode)
	assert.Equal(t, "https://mp.example/ticket", result.PaymentURL)
}

func TestMercadoPagoUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"invalid access token"}`)
	}))
	defer srv.Close()

	client := NewMercadoPagoClient(&MercadoPagoConfig{AccessToken: "bad"}, false)
	client.baseURL = srv.URL

	_, err := client.CreatePayment(context.Background(), &CreatePaymentInput{
		Reference: "ref-1",
		Amount:    10000,
		Method:    MethodPix,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid access token")
}

func TestMapMercadoPagoStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"approved", StatusConfirmed},
		{"accredited", StatusConfirmed},
		{"rejected", StatusFailed},
		{"cancelled", StatusFailed},
		{"expired", StatusExpired},
		{"in_process", StatusPending},
		{"pending", StatusPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapMercadoPagoStatus(tt.provider), tt.provider)
	}
}

func TestCentavosConversion(t *testing.T) {
	assert.Equal(t, 150.5, centavosToDecimal(15050))
	assert.Equal(t, int64(15050), decimalToCentavos(150.50))
	assert.Equal(t, int64(10), decimalToCentavos(0.1+0.2-0.2)) // rounding
}
