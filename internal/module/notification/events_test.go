package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/events"
)

func TestPaymentEventHandlerEnqueuesPerChannel(t *testing.T) {
	repo := newMemRepository()
	handler := NewPaymentEventHandler(NewService(repo, zap.NewNop()), zap.NewNop())

	event := events.NewPaymentConfirmedEvent(
		uuid.New(), uuid.New(), events.EntityEventRegistration, "EVT2025000042", "mercadopago", 15000,
	)
	event.PayerName = "Maria Silva"
	event.PayerEmail = "maria@example.com"
	event.PayerPhone = "+5511999990000"

	require.NoError(t, handler.Handle(event))

	pending, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	channels := map[string]*Notification{}
	for _, n := range pending {
		channels[n.Channel] = n
	}
	require.Contains(t, channels, ChannelEmail)
	require.Contains(t, channels, ChannelWhatsApp)
	assert.Equal(t, "maria@example.com", channels[ChannelEmail].Recipient)
	assert.Contains(t, channels[ChannelEmail].Body, "EVT2025000042")
	assert.Contains(t, channels[ChannelEmail].Body, "R$ 150,00")
	assert.Contains(t, channels[ChannelEmail].Subject, "EVT2025000042")
}

func TestPaymentEventHandlerNoContacts(t *testing.T) {
	repo := newMemRepository()
	handler := NewPaymentEventHandler(NewService(repo, zap.NewNop()), zap.NewNop())

	event := events.NewPaymentConfirmedEvent(
		uuid.New(), uuid.New(), events.EntityOther, "OTH2025000001", "stripe", 5000,
	)
	require.NoError(t, handler.Handle(event))

	pending, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
