package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/mchernyshov/tradepost/internal/auth"
	"github.com/mchernyshov/tradepost/internal/realtime"
	"github.com/mchernyshov/tradepost/pkg/errors"
	"github.com/mchernyshov/tradepost/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into authenticated WebSocket streams.
type RealtimeHandler struct {
	hub *realtime.Hub
	jwt *iauth.JWTService
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub, jwt *iauth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwt: jwt}
}

// Stream validates the caller and hands the connection to the hub. The token
// travels in the query string because browser WebSocket clients cannot set an
// Authorization header; the header is still honoured for other clients.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = strings.TrimSpace(c.Query("access_token"))
	}
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}

	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(claims.UserID, c.Writer, c.Request)
}
