package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/fedpay/server/internal/module/gateway/provider"
)

// NewClient builds a provider client from a gateway configuration.
// The credentials document is decoded into the provider-specific shape.
func NewClient(cfg *GatewayConfig) (provider.Client, error) {
	switch cfg.Provider {
	case ProviderMercadoPago:
		var pc provider.MercadoPagoConfig
		if err := json.Unmarshal(cfg.Credentials, &pc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		if pc.AccessToken == "" {
			return nil, fmt.Errorf("%w: missing access_token", ErrInvalidCredentials)
		}
		return provider.NewMercadoPagoClient(&pc, cfg.Sandbox), nil

	case ProviderPagSeguro:
		var pc provider.PagSeguroConfig
		if err := json.Unmarshal(cfg.Credentials, &pc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		if pc.Token == "" {
			return nil, fmt.Errorf("%w: missing token", ErrInvalidCredentials)
		}
		return provider.NewPagSeguroClient(&pc, cfg.Sandbox), nil

	case ProviderStripe:
		var pc provider.StripeConfig
		if err := json.Unmarshal(cfg.Credentials, &pc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		if pc.APIKey == "" {
			return nil, fmt.Errorf("%w: missing api_key", ErrInvalidCredentials)
		}
		return provider.NewStripeClient(&pc), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}
