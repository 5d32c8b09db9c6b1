package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/fedpay/server/internal/module/gateway/provider"
)

// PayerRequest identifies the person paying.
type PayerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Document string `json:"document" binding:"required"`
	Phone    string `json:"phone"`
}

// CheckoutRequest starts a payment for an entity.
type CheckoutRequest struct {
	EntityType  string       `json:"entity_type" binding:"required"`
	EntityID    uuid.UUID    `json:"entity_id" binding:"required"`
	Amount      int64        `json:"amount" binding:"required,gt=0"`
	Method      string       `json:"method" binding:"required,oneof=pix card boleto"`
	Description string       `json:"description" binding:"required"`
	Payer       PayerRequest `json:"payer" binding:"required"`
	ReturnURL   string       `json:"return_url"`
	ExpiresIn   int          `json:"expires_in"` // minutes, 0 for provider default
}

// CheckoutResponse is the front end's view of a started payment.
type CheckoutResponse struct {
	PaymentID      uuid.UUID  `json:"payment_id"`
	Status         string     `json:"status"`
	ProtocolNumber string     `json:"protocol_number"`
	PaymentURL     string     `json:"payment_url,omitempty"`
	QRCode         string     `json:"qr_code,omitempty"`
	QRCodeBase64   string     `json:"qr_code_base64,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// CardPaymentRequest charges a tokenized card directly.
type CardPaymentRequest struct {
	EntityType   string       `json:"entity_type" binding:"required"`
	EntityID     uuid.UUID    `json:"entity_id" binding:"required"`
	Amount       int64        `json:"amount" binding:"required,gt=0"`
	Description  string       `json:"description" binding:"required"`
	CardToken    string       `json:"card_token" binding:"required"`
	Bin          string       `json:"bin"`
	Installments int          `json:"installments" binding:"required,min=1,max=12"`
	MethodID     string       `json:"method_id"`
	Payer        PayerRequest `json:"payer" binding:"required"`
}

// CardPaymentResponse is the result of a direct card charge.
type CardPaymentResponse struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	Status         string    `json:"status"`
	StatusDetail   string    `json:"status_detail,omitempty"`
	ProtocolNumber string    `json:"protocol_number"`
}

// InstallmentsResponse lists installment plans for an amount.
type InstallmentsResponse struct {
	Provider string                       `json:"provider"`
	Options  []provider.InstallmentOption `json:"options"`
}
