package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		credentials string
		wantName    string
		wantErr     error
	}{
		{
			name:        "mercadopago",
			provider:    ProviderMercadoPago,
			credentials: `{"access_token":"TEST-123","webhook_secret":"whsec"}`,
			wantName:    "mercadopago",
		},
		{
			name:        "pagseguro",
			provider:    ProviderPagSeguro,
			credentials: `{"token":"ps-token"}`,
			wantName:    "pagseguro",
		},
		{
			name:        "stripe",
			provider:    ProviderStripe,
			credentials: `{"api_key":"sk_test_123","webhook_secret":"whsec"}`,
			wantName:    "stripe",
		},
		{
			name:        "unsupported provider",
			provider:    "paypal",
			credentials: `{}`,
			wantErr:     ErrUnsupportedProvider,
		},
		{
			name:        "mercadopago missing token",
			provider:    ProviderMercadoPago,
			credentials: `{"public_key":"pk"}`,
			wantErr:     ErrInvalidCredentials,
		},
		{
			name:        "pagseguro missing token",
			provider:    ProviderPagSeguro,
			credentials: `{"email":"a@b.com"}`,
			wantErr:     ErrInvalidCredentials,
		},
		{
			name:        "stripe missing key",
			provider:    ProviderStripe,
			credentials: `{}`,
			wantErr:     ErrInvalidCredentials,
		},
		{
			name:        "malformed credentials",
			provider:    ProviderMercadoPago,
			credentials: `not-json`,
			wantErr:     ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &GatewayConfig{
				Provider:    tt.provider,
				Credentials: json.RawMessage(tt.credentials),
			}
			client, err := NewClient(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, client.Name())
		})
	}
}
