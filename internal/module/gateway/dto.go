package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateGatewayRequest is the request to register a payment gateway.
type CreateGatewayRequest struct {
	Provider    string          `json:"provider" binding:"required"`
	Label       string          `json:"label" binding:"required"`
	Active      bool            `json:"active"`
	Priority    int             `json:"priority"`
	Sandbox     bool            `json:"sandbox"`
	Methods     []string        `json:"methods"`
	EntityTypes []string        `json:"entity_types"`
	Credentials json.RawMessage `json:"credentials" binding:"required"`
}

// UpdateGatewayRequest is the request to update a gateway. Nil fields
// are left unchanged.
type UpdateGatewayRequest struct {
	Label       *string         `json:"label"`
	Active      *bool           `json:"active"`
	Priority    *int            `json:"priority"`
	Sandbox     *bool           `json:"sandbox"`
	Methods     []string        `json:"methods"`
	EntityTypes []string        `json:"entity_types"`
	Credentials json.RawMessage `json:"credentials"`
}

// GatewayResponse is the API view of a gateway config. Credentials are
// never echoed back.
type GatewayResponse struct {
	ID          uuid.UUID `json:"id"`
	Provider    string    `json:"provider"`
	Label       string    `json:"label"`
	Active      bool      `json:"active"`
	Priority    int       `json:"priority"`
	Sandbox     bool      `json:"sandbox"`
	Methods     []string  `json:"methods"`
	EntityTypes []string  `json:"entity_types"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts a GatewayConfig to its API representation.
func (g *GatewayConfig) ToResponse() *GatewayResponse {
	return &GatewayResponse{
		ID:          g.ID,
		Provider:    g.Provider,
		Label:       g.Label,
		Active:      g.Active,
		Priority:    g.Priority,
		Sandbox:     g.Sandbox,
		Methods:     g.Methods,
		EntityTypes: g.EntityTypes,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
