package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeClient implements the Client interface for Stripe. It backs the
// card-only international checkout; PIX and boleto stay on the
// Brazilian providers.
type StripeClient struct {
	api           *client.API
	webhookSecret string
}

// StripeConfig holds Stripe credentials.
type StripeConfig struct {
	APIKey        string `json:"api_key"`
	WebhookSecret string `json:"webhook_secret"`
}

// NewStripeClient creates a new Stripe client.
func NewStripeClient(cfg *StripeConfig) *StripeClient {
	api := client.New(cfg.APIKey, nil)
	return &StripeClient{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}
}

// Name returns the provider name.
func (c *StripeClient) Name() string {
	return "stripe"
}

// CreatePayment creates a hosted Checkout Session and returns its URL.
func (c *StripeClient) CreatePayment(ctx context.Context, in *CreatePaymentInput) (*CreatePaymentResult, error) {
	if in.Method != MethodCard {
		return nil, fmt.Errorf("stripe: method %s not supported", in.Method)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("brl"),
					UnitAmount: stripe.Int64(in.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(in.Reference),
		CustomerEmail:     stripe.String(in.Payer.Email),
	}
	if in.ReturnURL != "" {
		params.SuccessURL = stripe.String(in.ReturnURL)
		params.CancelURL = stripe.String(in.ReturnURL)
	}
	if in.ExpiresAt != nil {
		params.ExpiresAt = stripe.Int64(in.ExpiresAt.Unix())
	}
	params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
		Metadata: map[string]string{"reference": in.Reference},
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	raw, _ := json.Marshal(sess)
	return &CreatePaymentResult{
		ExternalID: sess.ID,
		Status:     StatusPending,
		PaymentURL: sess.URL,
		RawPayload: raw,
	}, nil
}

// ProcessCardPayment confirms a PaymentIntent with a tokenized card.
func (c *StripeClient) ProcessCardPayment(ctx context.Context, in *CardPaymentInput) (*CardPaymentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      stripe.String("brl"),
		PaymentMethod: stripe.String(in.CardToken),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(in.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{"reference": in.Reference},
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	raw, _ := json.Marshal(pi)
	result := &CardPaymentResult{
		ExternalID: pi.ID,
		Status:     mapStripeStatus(string(pi.Status)),
		RawPayload: raw,
	}
	if pi.LastPaymentError != nil {
		result.StatusDetail = string(pi.LastPaymentError.Code)
	}
	return result, nil
}

// GetInstallmentOptions returns a single full-amount option. Stripe
// installments are negotiated on the card network side and are not
// exposed as a quote API.
func (c *StripeClient) GetInstallmentOptions(ctx context.Context, amount int64, methodID, bin string) ([]InstallmentOption, error) {
	return []InstallmentOption{
		{
			Installments:      1,
			InstallmentAmount: amount,
			TotalAmount:       amount,
			Label:             "1x",
		},
	}, nil
}

// ValidateWebhook verifies the Stripe-Signature header.
func (c *StripeClient) ValidateWebhook(payload []byte, signature, timestamp string) error {
	_, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	return err
}

// ParseWebhookData normalizes a Stripe event payload.
func (c *StripeClient) ParseWebhookData(ctx context.Context, payload []byte) (*WebhookData, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}

	status := mapStripeStatus(string(pi.Status))
	switch event.Type {
	case "payment_intent.succeeded":
		status = StatusConfirmed
	case "payment_intent.payment_failed":
		status = StatusFailed
	case "payment_intent.canceled":
		status = StatusExpired
	}

	return &WebhookData{
		ExternalID: pi.ID,
		Reference:  pi.Metadata["reference"],
		Status:     status,
		Amount:     pi.Amount,
		Method:     MethodCard,
		RawPayload: payload,
	}, nil
}

func mapStripeStatus(status string) string {
	switch status {
	case "succeeded":
		return StatusConfirmed
	case "canceled":
		return StatusExpired
	case "requires_payment_method":
		return StatusFailed
	default:
		return StatusPending
	}
}
