package provider

import (
	"context"
	"time"
)

// PaymentMethod represents a payment method type.
type PaymentMethod string

const (
	MethodPix    PaymentMethod = "pix"
	MethodCard   PaymentMethod = "card"
	MethodBoleto PaymentMethod = "boleto"
)

// Normalized payment statuses. Every provider client maps its own
// status vocabulary onto these.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
)

// Payer identifies who is paying.
type Payer struct {
	Name     string
	Email    string
	Document string // CPF/CNPJ digits only
}

// CreatePaymentInput is the uniform input for creating a remote payment.
type CreatePaymentInput struct {
	// Reference is our payment ID, round-tripped through the provider
	// as the external reference so webhooks can be correlated.
	Reference   string
	Amount      int64 // centavos
	Description string
	Method      PaymentMethod
	Payer       Payer
	NotifyURL   string
	ReturnURL   string
	ExpiresAt   *time.Time
}

// CreatePaymentResult is the uniform result of creating a remote payment.
type CreatePaymentResult struct {
	ExternalID   string
	Status       string // normalized
	PaymentURL   string // redirect checkout URL, when the flow is hosted
	QRCode       string // PIX copy-and-paste code
	QRCodeBase64 string // PIX QR image, when the provider returns one
	RawPayload   []byte // provider response, stored for traceability
}

// CardPaymentInput is the uniform input for direct card processing.
type CardPaymentInput struct {
	Reference    string
	Amount       int64
	CardToken    string
	Bin          string
	Installments int
	MethodID     string // provider-specific card brand identifier
	Payer        Payer
	Description  string
}

// CardPaymentResult is the uniform result of a card payment attempt.
type CardPaymentResult struct {
	ExternalID   string
	Status       string // normalized
	StatusDetail string // provider status detail (e.g. cc_rejected_insufficient_amount)
	RawPayload   []byte
}

// InstallmentOption describes one installment plan for a given amount.
type InstallmentOption struct {
	Installments      int     `json:"installments"`
	InstallmentAmount int64   `json:"installment_amount"` // centavos per installment
	TotalAmount       int64   `json:"total_amount"`
	InterestRate      float64 `json:"interest_rate"` // percent, 0 for interest-free
	Label             string  `json:"label"`
}

// WebhookData is the provider-agnostic view of a webhook payload.
type WebhookData struct {
	ExternalID string // provider's payment ID
	Reference  string // our payment ID (external reference)
	Status     string // normalized
	Amount     int64
	Method     PaymentMethod
	RawPayload []byte
}

// Client is the uniform contract every configured gateway exposes.
// One implementation exists per payment provider.
type Client interface {
	// Name returns the provider identifier (mercadopago, pagseguro, stripe).
	Name() string

	// CreatePayment creates a remote payment and returns the checkout
	// URL or PIX QR code the front end needs.
	CreatePayment(ctx context.Context, in *CreatePaymentInput) (*CreatePaymentResult, error)

	// ProcessCardPayment charges a tokenized card directly.
	ProcessCardPayment(ctx context.Context, in *CardPaymentInput) (*CardPaymentResult, error)

	// GetInstallmentOptions returns the installment plans available for
	// an amount. methodID and bin are optional provider hints.
	GetInstallmentOptions(ctx context.Context, amount int64, methodID, bin string) ([]InstallmentOption, error)

	// ValidateWebhook verifies a webhook signature against the raw body.
	// A non-nil error means the callback must be rejected unprocessed.
	ValidateWebhook(payload []byte, signature, timestamp string) error

	// ParseWebhookData normalizes a provider callback payload. Providers
	// that only deliver a resource ID fetch the payment state remotely.
	ParseWebhookData(ctx context.Context, payload []byte) (*WebhookData, error)
}
