package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/handlers"
)

func registerProductRoutes(api *gin.RouterGroup, handler *handlers.ProductHandler) {
	group := api.Group("/products")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id", handler.Update)
		group.PATCH("/:id/price", handler.UpdatePrice)
		group.DELETE("/:id", handler.Delete)

		group.POST("/:id/like", handler.Like)
		group.DELETE("/:id/like", handler.Unlike)
		group.GET("/:id/likes", handler.Likers)

		group.GET("/:id/comments", handler.ListComments)
		group.POST("/:id/comments", handler.CreateComment)
	}
}
