package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradepost_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// RealtimeConnections tracks the number of live WebSocket connections.
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradepost_realtime_connections",
			Help: "Number of live realtime connections",
		},
	)

	// NotificationsCreated counts persisted notification rows by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradepost_notifications_created_total",
			Help: "Total number of notification rows created",
		},
		[]string{"type"},
	)

	// NotificationsPushed counts wire envelopes emitted to live connections.
	NotificationsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradepost_notifications_pushed_total",
			Help: "Total number of notification envelopes pushed over websockets",
		},
		[]string{"wire_type"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradepost_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
