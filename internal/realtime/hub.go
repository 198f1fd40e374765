package realtime

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mchernyshov/tradepost/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16 // 64 KiB; clients only send keepalive chatter

	sendBufferSize = 32
)

// EventJoined and EventNotification name the server-to-client frame types.
const (
	EventJoined       = "joined"
	EventNotification = "notification"
)

// frame is the socket-level framing around wire payloads.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type joinedPayload struct {
	OK     bool `json:"ok"`
	UserID uint `json:"userId"`
}

// Hub owns the WebSocket transport: it upgrades authenticated requests,
// registers the resulting connection with the session registry, and runs the
// per-connection read/write loops. Identity resolution happens before Serve
// is called; the hub never sees credentials.
type Hub struct {
	registry *Registry
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a hub bound to the supplied registry.
func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry: registry,
		log:      logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// Registry exposes the hub's session registry for wiring into the gateway.
func (h *Hub) Registry() *Registry {
	if h == nil {
		return nil
	}
	return h.registry
}

// Serve upgrades the HTTP connection to a WebSocket, confirms the join to the
// client, and registers the connection for pushes. Blocks until the client
// disconnects; the registry entry is removed before Serve returns.
func (h *Hub) Serve(userID uint, w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &wsConn{
		hub:    h,
		socket: socket,
		userID: userID,
		send:   make(chan frame, sendBufferSize),
	}

	h.registry.Register(userID, conn)
	conn.send <- frame{Event: EventJoined, Data: joinedPayload{OK: true, UserID: userID}}

	go conn.writeLoop()
	conn.readLoop()
}

// wsConn adapts one websocket connection into a registry Sink. Its lifetime is
// bounded by the underlying socket; it is never reused across reconnects.
type wsConn struct {
	hub    *Hub
	socket *websocket.Conn
	userID uint
	send   chan frame
	once   sync.Once

	mu     sync.Mutex
	closed bool
}

// Deliver enqueues an envelope without blocking. A full buffer drops the
// frame: delivery is at-most-once and the durable row already exists. The
// closed guard covers the window between a registry snapshot and a concurrent
// disconnect.
func (c *wsConn) Deliver(envelope Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- frame{Event: EventNotification, Data: envelope}:
	default:
		c.hub.log.Debug("dropping envelope for slow consumer", zap.Uint("user_id", c.userID))
	}
}

func (c *wsConn) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The channel is server-to-client only; inbound payloads are drained and
	// discarded until the peer goes away.
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected websocket close", zap.Uint("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *wsConn) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close tears the connection down exactly once: the registry entry goes first
// so subsequent pushes no longer see this sink.
func (c *wsConn) close() {
	c.once.Do(func() {
		c.hub.registry.Unregister(c.userID, c)

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		_ = c.socket.Close()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
