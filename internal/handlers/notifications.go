package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/services"
	"github.com/mchernyshov/tradepost/pkg/response"
)

// NotificationHandler exposes the read-side of the notification store. Rows are
// only ever created by domain events, so there is no create endpoint.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.service.ListMine(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// UnreadCount returns how many of the caller's notifications are unread.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// MarkRead marks one notification as read. Re-marking an already-read
// notification succeeds; a foreign or missing notification is a 404.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(requestContext(c), currentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.service.MarkAllRead(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}
