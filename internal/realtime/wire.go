package realtime

import (
	"github.com/mchernyshov/tradepost/internal/models"
)

// WireType is the external wire-protocol taxonomy. It is deliberately smaller
// than models.NotificationType so the internal event set can grow without
// changing the client contract.
type WireType string

const (
	WireSystem         WireType = "system"
	WireChat           WireType = "chat"
	WireContractLinked WireType = "contract-linked"
)

// Envelope is the externally contracted message shape pushed over the realtime
// channel. It is constructed per delivery and never persisted.
type Envelope struct {
	Type      WireType       `json:"type"`
	Message   string         `json:"message"`
	CreatedAt string         `json:"createdAt"`
	Data      map[string]any `json:"data,omitempty"`
}

// wireTypeFor maps the internal notification taxonomy onto the wire taxonomy.
// The mapping must stay total over models.AllNotificationTypes; the unit test
// in wire_test.go enumerates every variant since the compiler cannot enforce
// switch exhaustiveness. Unknown values fall back to the most generic wire
// type with ok=false so the caller can flag them without breaking delivery.
func wireTypeFor(t models.NotificationType) (wire WireType, ok bool) {
	switch t {
	case models.NotificationPriceChange:
		return WireSystem, true
	case models.NotificationNewComment:
		return WireChat, true
	default:
		return WireSystem, false
	}
}
