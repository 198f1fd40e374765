package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/handlers"
)

func registerArticleRoutes(api *gin.RouterGroup, handler *handlers.ArticleHandler) {
	group := api.Group("/articles")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)

		group.GET("/:id/comments", handler.ListComments)
		group.POST("/:id/comments", handler.CreateComment)
	}
}
