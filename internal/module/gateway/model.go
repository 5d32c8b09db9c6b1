package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fedpay/server/internal/module/gateway/provider"
	"github.com/fedpay/server/internal/shared/events"
)

// Supported provider identifiers.
const (
	ProviderMercadoPago = "mercadopago"
	ProviderPagSeguro   = "pagseguro"
	ProviderStripe      = "stripe"
)

// ValidEntityTypes lists the entity types a gateway may be scoped to.
var ValidEntityTypes = []string{
	events.EntityEventRegistration,
	events.EntityAthleteMembership,
	events.EntityClubAffiliation,
	events.EntityOther,
}

// GatewayConfig is a configured payment gateway. Credentials are stored
// as an opaque JSON document whose shape depends on the provider.
type GatewayConfig struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Provider    string          `gorm:"size:50;not null;index" json:"provider"`
	Label       string          `gorm:"size:100;not null" json:"label"`
	Active      bool            `gorm:"not null;default:false;index" json:"active"`
	Priority    int             `gorm:"not null;default:0" json:"priority"`
	Sandbox     bool            `gorm:"not null;default:false" json:"sandbox"`
	Methods     []string        `gorm:"serializer:json;type:jsonb" json:"methods"`
	EntityTypes []string        `gorm:"serializer:json;type:jsonb" json:"entity_types"`
	Credentials json.RawMessage `gorm:"type:jsonb" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (GatewayConfig) TableName() string {
	return "gateway_configs"
}

// SupportsEntityType reports whether this gateway handles payments for
// the given entity type. An empty list means all types.
func (g *GatewayConfig) SupportsEntityType(entityType string) bool {
	if len(g.EntityTypes) == 0 {
		return true
	}
	for _, t := range g.EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

// SupportsMethod reports whether this gateway accepts the given payment
// method. An empty list means all methods.
func (g *GatewayConfig) SupportsMethod(method provider.PaymentMethod) bool {
	if len(g.Methods) == 0 {
		return true
	}
	for _, m := range g.Methods {
		if m == string(method) {
			return true
		}
	}
	return false
}

// IsValidEntityType reports whether entityType is one of the canonical
// entity types.
func IsValidEntityType(entityType string) bool {
	for _, t := range ValidEntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}
