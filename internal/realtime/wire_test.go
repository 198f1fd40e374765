package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchernyshov/tradepost/internal/models"
)

// Go cannot enforce switch exhaustiveness at compile time, so this test walks
// the full internal enumeration: adding a notification type without a wire
// mapping fails here.
func TestWireTypeMappingIsTotal(t *testing.T) {
	for _, internal := range models.AllNotificationTypes {
		wire, ok := wireTypeFor(internal)
		require.True(t, ok, "notification type %q has no wire mapping", internal)
		require.NotEmpty(t, wire)
	}
}

func TestWireTypeMapping(t *testing.T) {
	wire, ok := wireTypeFor(models.NotificationPriceChange)
	require.True(t, ok)
	require.Equal(t, WireSystem, wire)

	wire, ok = wireTypeFor(models.NotificationNewComment)
	require.True(t, ok)
	require.Equal(t, WireChat, wire)
}

func TestWireTypeUnknownFallsBackToSystem(t *testing.T) {
	wire, ok := wireTypeFor(models.NotificationType("SOMETHING_NEW"))
	require.False(t, ok)
	require.Equal(t, WireSystem, wire)
}
