package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.PATCH("/read-all", handler.MarkAllRead)
		group.PATCH("/:id/read", handler.MarkRead)
	}
}
