package realtime

import (
	"time"

	"go.uber.org/zap"

	"github.com/mchernyshov/tradepost/internal/models"
	"github.com/mchernyshov/tradepost/pkg/logger"
	"github.com/mchernyshov/tradepost/pkg/metrics"
)

// Push describes one outbound notification addressed to a single user.
// CreatedAt defaults to the current time when zero.
type Push struct {
	UserID    uint
	Type      models.NotificationType
	Message   string
	CreatedAt time.Time
	Data      map[string]any
}

// Gateway emits wire envelopes to every live connection of a user. Delivery is
// fire-and-forget, at-most-once: the durable notification row written before
// the push is the source of truth, so a missed envelope is never an error.
type Gateway struct {
	registry *Registry
	log      *zap.Logger
}

// NewGateway constructs a delivery gateway over the supplied registry.
func NewGateway(registry *Registry) *Gateway {
	return &Gateway{
		registry: registry,
		log:      logger.WithModule("realtime"),
	}
}

// NotifyUser builds one envelope and delivers it to each live connection of
// the target user. A nil gateway (transport never started) or a user with no
// live connections is a silent no-op.
func (g *Gateway) NotifyUser(p Push) {
	if g == nil || g.registry == nil {
		return
	}

	sinks := g.registry.ConnectionsFor(p.UserID)
	if len(sinks) == 0 {
		return
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	wire, ok := wireTypeFor(p.Type)
	if !ok {
		// Unknown types degrade to the generic wire type; flag for review.
		g.log.Warn("unmapped notification type on delivery path",
			zap.String("type", string(p.Type)),
			zap.Uint("user_id", p.UserID),
		)
	}

	envelope := Envelope{
		Type:      wire,
		Message:   p.Message,
		CreatedAt: createdAt.Format(time.RFC3339),
		Data:      p.Data,
	}

	for _, sink := range sinks {
		sink.Deliver(envelope)
	}
	metrics.NotificationsPushed.WithLabelValues(string(wire)).Add(float64(len(sinks)))
}
