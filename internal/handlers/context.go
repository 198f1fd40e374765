package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mchernyshov/tradepost/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated caller's id, zero when absent.
func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.CtxUserIDKey)
}
