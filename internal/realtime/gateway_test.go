package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mchernyshov/tradepost/internal/models"
)

func TestGatewayNoConnectionsIsSilentNoOp(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	// Must not panic and must not emit anywhere.
	gateway.NotifyUser(Push{UserID: 99, Type: models.NotificationNewComment, Message: "hi"})
}

func TestGatewayNilIsSilentNoOp(t *testing.T) {
	var gateway *Gateway
	gateway.NotifyUser(Push{UserID: 1, Type: models.NotificationNewComment, Message: "hi"})
}

func TestGatewayDeliversToEveryConnection(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	phone := &recordSink{}
	laptop := &recordSink{}
	other := &recordSink{}
	registry.Register(7, phone)
	registry.Register(7, laptop)
	registry.Register(8, other)

	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	gateway.NotifyUser(Push{
		UserID:    7,
		Type:      models.NotificationNewComment,
		Message:   "Olha commented on your article \"Selling fast\"",
		CreatedAt: createdAt,
		Data:      map[string]any{"articleId": uint(10)},
	})

	want := Envelope{
		Type:      WireChat,
		Message:   "Olha commented on your article \"Selling fast\"",
		CreatedAt: "2025-03-14T09:26:53Z",
		Data:      map[string]any{"articleId": uint(10)},
	}

	require.Equal(t, []Envelope{want}, phone.received())
	require.Equal(t, []Envelope{want}, laptop.received())
	require.Empty(t, other.received())
}

func TestGatewayDefaultsCreatedAt(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	sink := &recordSink{}
	registry.Register(3, sink)

	before := time.Now().UTC().Add(-time.Second)
	gateway.NotifyUser(Push{UserID: 3, Type: models.NotificationPriceChange, Message: "price changed"})

	received := sink.received()
	require.Len(t, received, 1)
	require.Equal(t, WireSystem, received[0].Type)

	parsed, err := time.Parse(time.RFC3339, received[0].CreatedAt)
	require.NoError(t, err)
	require.True(t, parsed.After(before))
}

func TestGatewayUnknownTypeStillDelivers(t *testing.T) {
	registry := NewRegistry()
	gateway := NewGateway(registry)

	sink := &recordSink{}
	registry.Register(4, sink)

	gateway.NotifyUser(Push{UserID: 4, Type: models.NotificationType("FUTURE"), Message: "m"})

	received := sink.received()
	require.Len(t, received, 1)
	require.Equal(t, WireSystem, received[0].Type)
}
