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
	"net/http"
	"net/url"
	"time"
)

const (
	pagSeguroBaseURL        = "https://api.pagseguro.com"
	pagSeguroSandboxBaseURL = "https://sandbox.api.pagseguro.com"
)

// PagSeguroClient implements the Client interface for PagSeguro (PagBank).
type PagSeguroClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// PagSeguroConfig holds PagSeguro credentials.
type PagSeguroConfig struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// NewPagSeguroClient creates a new PagSeguro client.
func NewPagSeguroClient(cfg *PagSeguroConfig, sandbox bool) *PagSeguroClient {
	baseURL := pagSeguroBaseURL
	if sandbox {
		baseURL = pagSeguroSandboxBaseURL
	}
	return &PagSeguroClient{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider name.
func (c *PagSeguroClient) Name() string {
	return "pagseguro"
}

// psOrder mirrors the fields we consume from orders API responses.
type psOrder struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
	QRCodes     []struct {
		Text  string `json:"text"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	} `json:"qr_codes"`
	Charges []psCharge `json:"charges"`
	Links   []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

type psCharge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount struct {
		Value int64 `json:"value"`
	} `json:"amount"`
	PaymentResponse struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"payment_response"`
	PaymentMethod struct {
		Type string `json:"type"`
	} `json:"payment_method"`
}

// CreatePayment creates an order. PIX orders carry a qr_codes block;
// boleto orders carry a charge with the boleto payment method.
func (c *PagSeguroClient) CreatePayment(ctx context.Context, in *CreatePaymentInput) (*CreatePaymentResult, error) {
	body := map[string]any{
		"reference_id": in.Reference,
		"customer": map[string]any{
			"name":   in.Payer.Name,
			"email":  in.Payer.Email,
			"tax_id": in.Payer.Document,
		},
		"items": []map[string]any{
			{
				"name":        in.Description,
				"quantity":    1,
				"unit_amount": in.Amount,
			},
		},
		"notification_urls": []string{in.NotifyURL},
	}

	switch in.Method {
	case MethodPix:
		qr := map[string]any{
			"amount": map[string]int64{"value": in.Amount},
		}
		if in.ExpiresAt != nil {
			qr["expiration_date"] = in.ExpiresAt.Format(time.RFC3339)
		}
		body["qr_codes"] = []map[string]any{qr}
	case MethodBoleto:
		due := time.Now().AddDate(0, 0, 3)
		if in.ExpiresAt != nil {
			due = *in.ExpiresAt
		}
		body["charges"] = []map[string]any{
			{
				"reference_id": in.Reference,
				"description":  in.Description,
				"amount": map[string]any{
					"value":    in.Amount,
					"currency": "BRL",
				},
				"payment_method": map[string]any{
					"type": "BOLETO",
					"boleto": map[string]any{
						"due_date": due.Format("2006-01-02"),
						"holder": map[string]any{
							"name":   in.Payer.Name,
							"tax_id": in.Payer.Document,
							"email":  in.Payer.Email,
						},
					},
				},
			},
		}
	default:
		return nil, fmt.Errorf("pagseguro: method %s requires the card endpoint", in.Method)
	}

	raw, err := c.doJSON(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}

	var order psOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}

	result := &CreatePaymentResult{
		ExternalID: order.ID,
		Status:     StatusPending,
		RawPayload: raw,
	}
	if len(order.QRCodes) > 0 {
		result.QRCode = order.QRCodes[0].Text
		for _, link := range order.QRCodes[0].Links {
			if link.Rel == "QRCODE.PNG" {
				result.PaymentURL = link.Href
			}
		}
	}
	if len(order.Charges) > 0 {
		result.Status = mapPagSeguroStatus(order.Charges[0].Status)
		for _, link := range order.Links {
			if link.Rel == "PAY" {
				result.PaymentURL = link.Href
			}
		}
	}
	return result, nil
}

// ProcessCardPayment creates an order with an encrypted-card charge.
func (c *PagSeguroClient) ProcessCardPayment(ctx context.Context, in *CardPaymentInput) (*CardPaymentResult, error) {
	body := map[string]any{
		"reference_id": in.Reference,
		"customer": map[string]any{
			"name":   in.Payer.Name,
			"email":  in.Payer.Email,
			"tax_id": in.Payer.Document,
		},
		"items": []map[string]any{
			{
				"name":        in.Description,
				"quantity":    1,
				"unit_amount": in.Amount,
			},
		},
		"charges": []map[string]any{
			{
				"reference_id": in.Reference,
				"description":  in.Description,
				"amount": map[string]any{
					"value":    in.Amount,
					"currency": "BRL",
				},
				"payment_method": map[string]any{
					"type":         "CREDIT_CARD",
					"installments": in.Installments,
					"capture":      true,
					"card": map[string]any{
						"encrypted": in.CardToken,
					},
				},
			},
		},
	}

	raw, err := c.doJSON(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}

	var order psOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if len(order.Charges) == 0 {
		return nil, fmt.Errorf("pagseguro: order has no charge")
	}

	charge := order.Charges[0]
	return &CardPaymentResult{
		ExternalID:   order.ID,
		Status:       mapPagSeguroStatus(charge.Status),
		StatusDetail: charge.PaymentResponse.Message,
		RawPayload:   raw,
	}, nil
}

// GetInstallmentOptions queries the fee calculator for credit card
// installment plans.
func (c *PagSeguroClient) GetInstallmentOptions(ctx context.Context, amount int64, methodID, bin string) ([]InstallmentOption, error) {
	q := url.Values{}
	q.Set("payment_methods", "CREDIT_CARD")
	q.Set("value", fmt.Sprintf("%d", amount))
	q.Set("max_installments", "12")
	if bin != "" {
		q.Set("credit_card_bin", bin)
	}

	raw, err := c.doJSON(ctx, http.MethodGet, "/charges/fees/calculate?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var fees struct {
		PaymentMethods struct {
			CreditCard map[string]struct {
				InstallmentPlans []struct {
					Installments     int  `json:"installments"`
					InstallmentValue int64 `json:"installment_value"`
					InterestFree     bool `json:"interest_free"`
					Amount           struct {
						Value int64 `json:"value"`
					} `json:"amount"`
				} `json:"installment_plans"`
			} `json:"credit_card"`
		} `json:"payment_methods"`
	}
	if err := json.Unmarshal(raw, &fees); err != nil {
		return nil, fmt.Errorf("decode fees: %w", err)
	}

	var options []InstallmentOption
	for _, brand := range fees.PaymentMethods.CreditCard {
		for _, plan := range brand.InstallmentPlans {
			opt := InstallmentOption{
				Installments:      plan.Installments,
				InstallmentAmount: plan.InstallmentValue,
				TotalAmount:       plan.Amount.Value,
			}
			if plan.InterestFree {
				opt.Label = fmt.Sprintf("%dx sem juros", plan.Installments)
			} else {
				opt.Label = fmt.Sprintf("%dx com juros", plan.Installments)
			}
			options = append(options, opt)
		}
		break // plans are the same across brands for a given bin
	}
	return options, nil
}

// ValidateWebhook verifies the x-authenticity-token header, a SHA-256
// digest of "<token>-<raw body>".
func (c *PagSeguroClient) ValidateWebhook(payload []byte, signature, timestamp string) error {
	if c.token == "" {
		return fmt.Errorf("token not configured")
	}
	if signature == "" {
		return fmt.Errorf("missing authenticity token")
	}

	digest := sha256.Sum256(append([]byte(c.token+"-"), payload...))
	expected := hex.EncodeToString(digest[:])

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("authenticity token mismatch")
	}
	return nil
}

// ParseWebhookData normalizes a PagSeguro notification. The callback
// delivers the full order resource.
func (c *PagSeguroClient) ParseWebhookData(ctx context.Context, payload []byte) (*WebhookData, error) {
	var order psOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("notification missing order id")
	}

	data := &WebhookData{
		ExternalID: order.ID,
		Reference:  order.ReferenceID,
		Status:     StatusPending,
		RawPayload: payload,
	}
	if len(order.Charges) > 0 {
		charge := order.Charges[0]
		data.Status = mapPagSeguroStatus(charge.Status)
		data.Amount = charge.Amount.Value
		data.Method = mapPagSeguroMethod(charge.PaymentMethod.Type)
	}
	return data, nil
}

// --- Helpers ---

func (c *PagSeguroClient) doJSON(ctx context.Context, method, path string, body any) ([]byte, error) {
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
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pagseguro request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			ErrorMessages []struct {
				Description string `json:"description"`
			} `json:"error_messages"`
		}
		_ = json.Unmarshal(data, &apiErr)
		if len(apiErr.ErrorMessages) > 0 {
			return nil, fmt.Errorf("pagseguro: %s", apiErr.ErrorMessages[0].Description)
		}
		return nil, fmt.Errorf("pagseguro: %s", resp.Status)
	}

	return data, nil
}

func mapPagSeguroStatus(status string) string {
	switch status {
	case "PAID", "AVAILABLE":
		return StatusConfirmed
	case "DECLINED", "CANCELED":
		return StatusFailed
	case "EXPIRED":
		return StatusExpired
	default: // AUTHORIZED, WAITING, IN_ANALYSIS
		return StatusPending
	}
}

func mapPagSeguroMethod(methodType string) PaymentMethod {
	switch methodType {
	case "PIX":
		return MethodPix
	case "BOLETO":
		return MethodBoleto
	default:
		return MethodCard
	}
}
