package realtime

import (
	"sync"

	"github.com/mchernyshov/tradepost/pkg/metrics"
)

// Sink receives wire envelopes bound for one live connection. Implementations
// must not block; the hub's websocket sink buffers and drops under pressure.
type Sink interface {
	Deliver(Envelope)
}

// Registry maps user identities to their set of live connection sinks. It is
// the only process-wide mutable state on the delivery path, so every mutation
// and snapshot takes the lock. A user with zero live connections is absent
// from the map entirely; that absence is the "is this user reachable" check.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint]map[Sink]struct{}
}

// NewRegistry constructs an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[uint]map[Sink]struct{}),
	}
}

// Register adds a connection sink for the user. Repeated registration of the
// same sink is a no-op (set membership, not a counter).
func (r *Registry) Register(userID uint, sink Sink) {
	if sink == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[userID]
	if set == nil {
		set = make(map[Sink]struct{})
		r.conns[userID] = set
	}
	if _, exists := set[sink]; exists {
		return
	}
	set[sink] = struct{}{}
	metrics.RealtimeConnections.Inc()
}

// Unregister removes a connection sink for the user. When the user's set
// becomes empty the user entry is removed entirely. Unknown sinks are ignored.
func (r *Registry) Unregister(userID uint, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[userID]
	if set == nil {
		return
	}
	if _, exists := set[sink]; !exists {
		return
	}
	delete(set, sink)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
	metrics.RealtimeConnections.Dec()
}

// ConnectionsFor returns a snapshot of the user's live sinks, empty when the
// user has no connections.
func (r *Registry) ConnectionsFor(userID uint) []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}

	sinks := make([]Sink, 0, len(set))
	for sink := range set {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Reset clears all registered connections. Used for test isolation and
// graceful shutdown.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, set := range r.conns {
		metrics.RealtimeConnections.Sub(float64(len(set)))
	}
	r.conns = make(map[uint]map[Sink]struct{})
}
