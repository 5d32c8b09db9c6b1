package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

// MercadoPagoClient implements the Client interface for Mercado Pago.
type MercadoPagoClient struct {
	accessToken   string
	webhookSecret string
	sandbox       bool
	baseURL       string
	httpClient    *http.Client
}

// MercadoPagoConfig holds Mercado Pago credentials.
type MercadoPagoConfig struct {
	AccessToken   string `json:"access_token"`
	PublicKey     string `json:"public_key"`
	WebhookSecret string `json:"webhook_secret"`
}

// NewMercadoPagoClient creates a new Mercado Pago client.
func NewMercadoPagoClient(cfg *MercadoPagoConfig, sandbox bool) *MercadoPagoClient {
	return &MercadoPagoClient{
		accessToken:   cfg.AccessToken,
		webhookSecret: cfg.WebhookSecret,
		sandbox:       sandbox,
		baseURL:       mercadoPagoBaseURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider name.
func (c *MercadoPagoClient) Name() string {
	return "mercadopago"
}

// mpPayment mirrors the fields we consume from /v1/payments responses.
type mpPayment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
	PaymentMethodID   string  `json:"payment_method_id"`
	PaymentTypeID     string  `json:"payment_type_id"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePayment creates a remote payment. PIX goes through the payments
// API and returns a QR code; other methods go through a checkout
// preference and return a redirect URL.
func (c *MercadoPagoClient) CreatePayment(ctx context.Context, in *CreatePaymentInput) (*CreatePaymentResult, error) {
	if in.Method == MethodPix {
		return c.createPixPayment(ctx, in)
	}
	return c.createPreference(ctx, in)
}

func (c *MercadoPagoClient) createPixPayment(ctx context.Context, in *CreatePaymentInput) (*CreatePaymentResult, error) {
	body := map[string]any{
		"transaction_amount": centavosToDecimal(in.Amount),
		"description":        in.Description,
		"payment_method_id":  "pix",
		"external_reference": in.Reference,
		"notification_url":   in.NotifyURL,
		"payer": map[string]any{
			"email":      in.Payer.Email,
			"first_name": in.Payer.Name,
			"identification": map[string]string{
				"type":   "CPF",
				"number": in.Payer.Document,
			},
		},
	}
	if in.ExpiresAt != nil {
		body["date_of_expiration"] = in.ExpiresAt.Format("2006-01-02T15:04:05.000-07:00")
	}

	raw, err := c.doJSON(ctx, http.MethodPost, "/v1/payments", body)
	if err != nil {
		return nil, err
	}

	var p mpPayment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}

	return &CreatePaymentResult{
		ExternalID:   fmt.Sprintf("%d", p.ID),
		Status:       mapMercadoPagoStatus(p.Status),
		PaymentURL:   p.PointOfInteraction.TransactionData.TicketURL,
		QRCode:       p.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: p.PointOfInteraction.TransactionData.QRCodeBase64,
		RawPayload:   raw,
	}, nil
}

func (c *MercadoPagoClient) createPreference(ctx context.Context, in *CreatePaymentInput) (*CreatePaymentResult, error) {
	body := map[string]any{
		"items": []map[string]any{
			{
				"title":       in.Description,
				"quantity":    1,
				"unit_price":  centavosToDecimal(in.Amount),
				"currency_id": "BRL",
			},
		},
		"external_reference": in.Reference,
		"notification_url":   in.NotifyURL,
		"payer": map[string]string{
			"email": in.Payer.Email,
			"name":  in.Payer.Name,
		},
	}
	if in.ReturnURL != "" {
		body["back_urls"] = map[string]string{
			"success": in.ReturnURL,
			"pending": in.ReturnURL,
			"failure": in.ReturnURL,
		}
		body["auto_return"] = "approved"
	}
	if in.ExpiresAt != nil {
		body["expires"] = true
		body["expiration_date_to"] = in.ExpiresAt.Format("2006-01-02T15:04:05.000-07:00")
	}

	raw, err := c.doJSON(ctx, http.MethodPost, "/checkout/preferences", body)
	if err != nil {
		return nil, err
	}

	var pref struct {
		ID              string `json:"id"`
		InitPoint       string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}
	if err := json.Unmarshal(raw, &pref); err != nil {
		return nil, fmt.Errorf("decode preference: %w", err)
	}

	paymentURL := pref.InitPoint
	if c.sandbox && pref.SandboxInitPoint != "" {
		paymentURL = pref.SandboxInitPoint
	}

	return &CreatePaymentResult{
		ExternalID: pref.ID,
		Status:     StatusPending,
		PaymentURL: paymentURL,
		RawPayload: raw,
	}, nil
}

// ProcessCardPayment charges a tokenized card through the payments API.
func (c *MercadoPagoClient) ProcessCardPayment(ctx context.Context, in *CardPaymentInput) (*CardPaymentResult, error) {
	body := map[string]any{
		"transaction_amount": centavosToDecimal(in.Amount),
		"token":              in.CardToken,
		"installments":       in.Installments,
		"payment_method_id":  in.MethodID,
		"description":        in.Description,
		"external_reference": in.Reference,
		"payer": map[string]any{
			"email": in.Payer.Email,
			"identification": map[string]string{
				"type":   "CPF",
				"number": in.Payer.Document,
			},
		},
	}

	raw, err := c.doJSON(ctx, http.MethodPost, "/v1/payments", body)
	if err != nil {
		return nil, err
	}

	var p mpPayment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}

	return &CardPaymentResult{
		ExternalID:   fmt.Sprintf("%d", p.ID),
		Status:       mapMercadoPagoStatus(p.Status),
		StatusDetail: p.StatusDetail,
		RawPayload:   raw,
	}, nil
}

// GetInstallmentOptions queries the installments API for an amount.
func (c *MercadoPagoClient) GetInstallmentOptions(ctx context.Context, amount int64, methodID, bin string) ([]InstallmentOption, error) {
	q := url.Values{}
	q.Set("amount", fmt.Sprintf("%.2f", centavosToDecimal(amount)))
	if bin != "" {
		q.Set("bin", bin)
	}
	if methodID != "" {
		q.Set("payment_method_id", methodID)
	}

	raw, err := c.doJSON(ctx, http.MethodGet, "/v1/payment_methods/installments?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var methods []struct {
		PayerCosts []struct {
			Installments       int     `json:"installments"`
			InstallmentRate    float64 `json:"installment_rate"`
			InstallmentAmount  float64 `json:"installment_amount"`
			TotalAmount        float64 `json:"total_amount"`
			RecommendedMessage string  `json:"recommended_message"`
		} `json:"payer_costs"`
	}
	if err := json.Unmarshal(raw, &methods); err != nil {
		return nil, fmt.Errorf("decode installments: %w", err)
	}

	var options []InstallmentOption
	for _, m := range methods {
		for _, pc := range m.PayerCosts {
			options = append(options, InstallmentOption{
				Installments:      pc.Installments,
				InstallmentAmount: decimalToCentavos(pc.InstallmentAmount),
				TotalAmount:       decimalToCentavos(pc.TotalAmount),
				InterestRate:      pc.InstallmentRate,
				Label:             pc.RecommendedMessage,
			})
		}
	}
	return options, nil
}

// ValidateWebhook verifies the x-signature header. The header carries
// "ts=<unix>,v1=<hex hmac>"; the HMAC-SHA256 manifest is
// "id:<data.id>;ts:<ts>;" keyed with the configured webhook secret.
func (c *MercadoPagoClient) ValidateWebhook(payload []byte, signature, timestamp string) error {
	if c.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" {
		ts = timestamp
	}
	if ts == "" || v1 == "" {
		return fmt.Errorf("malformed signature header")
	}

	var notif struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &notif); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	manifest := fmt.Sprintf("id:%s;ts:%s;", notif.Data.ID, ts)
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// ParseWebhookData normalizes a Mercado Pago notification. The
// notification only carries the payment ID, so the payment is fetched
// to resolve status and external reference.
func (c *MercadoPagoClient) ParseWebhookData(ctx context.Context, payload []byte) (*WebhookData, error) {
	var notif struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &notif); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	if notif.Type != "" && notif.Type != "payment" {
		return nil, fmt.Errorf("unsupported notification type: %s", notif.Type)
	}
	if notif.Data.ID == "" {
		return nil, fmt.Errorf("notification missing payment id")
	}

	raw, err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+notif.Data.ID, nil)
	if err != nil {
		return nil, err
	}

	var p mpPayment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}

	return &WebhookData{
		ExternalID: fmt.Sprintf("%d", p.ID),
		Reference:  p.ExternalReference,
		Status:     mapMercadoPagoStatus(p.Status),
		Amount:     decimalToCentavos(p.TransactionAmount),
		Method:     mapMercadoPagoMethod(p.PaymentTypeID),
		RawPayload: raw,
	}, nil
}

// --- Helpers ---

func (c *MercadoPagoClient) doJSON(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return nil, fmt.Errorf("mercadopago: %s", apiErr.Message)
	}

	return data, nil
}

func mapMercadoPagoStatus(status string) string {
	switch status {
	case "approved", "accredited":
		return StatusConfirmed
	case "rejected", "cancelled", "charged_back", "refunded":
		return StatusFailed
	case "expired":
		return StatusExpired
	default:
		return StatusPending
	}
}

func mapMercadoPagoMethod(paymentTypeID string) PaymentMethod {
	switch paymentTypeID {
	case "bank_transfer", "account_money":
		return MethodPix
	case "ticket":
		return MethodBoleto
	default:
		return MethodCard
	}
}

func centavosToDecimal(amount int64) float64 {
	return float64(amount) / 100
}

func decimalToCentavos(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
