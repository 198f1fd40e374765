package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/mchernyshov/tradepost/internal/auth"
	"github.com/mchernyshov/tradepost/internal/handlers"
	"github.com/mchernyshov/tradepost/internal/middleware"
	"github.com/mchernyshov/tradepost/internal/realtime"
	"github.com/mchernyshov/tradepost/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// The hub may be nil; the marketplace then runs without realtime delivery and
// notifications stay purely durable.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	userSvc, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	likeSvc, err := services.NewLikeService(db)
	if err != nil {
		return nil, err
	}
	store, err := services.NewNotificationStore(db)
	if err != nil {
		return nil, err
	}

	var gateway *realtime.Gateway
	if hub != nil {
		gateway = realtime.NewGateway(hub.Registry())
	}

	notificationSvc, err := services.NewNotificationService(store, gateway, likeSvc)
	if err != nil {
		return nil, err
	}
	productSvc, err := services.NewProductService(db, notificationSvc)
	if err != nil {
		return nil, err
	}
	articleSvc, err := services.NewArticleService(db)
	if err != nil {
		return nil, err
	}
	commentSvc, err := services.NewCommentService(db, notificationSvc)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	authHandler := handlers.NewAuthHandler(userSvc, jwt)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	registerProductRoutes(api, handlers.NewProductHandler(productSvc, likeSvc, commentSvc))
	registerArticleRoutes(api, handlers.NewArticleHandler(articleSvc, commentSvc))
	registerNotificationRoutes(api, handlers.NewNotificationHandler(notificationSvc))

	// Realtime stream; the handler does its own token validation because
	// browser WebSocket clients cannot send an Authorization header.
	if hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(hub, jwt)
		r.GET("/ws", realtimeHandler.Stream)
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
