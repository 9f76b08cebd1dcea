package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"worldchat/config"
	"worldchat/internal/auth"
	"worldchat/internal/graph"
	"worldchat/internal/handler"
	"worldchat/internal/middleware"
	"worldchat/internal/presence"
	"worldchat/internal/repository"
	"worldchat/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup builds the API engine. Background work it starts stops when ctx is done.
func Setup(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger, resolver auth.Resolver, gw *presence.Gateway) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Run(ctx, time.Minute)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.BaseURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Authenticate(resolver))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RateLimit(limiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	worldRepo := repository.NewWorldRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo, accountRepo, sessionRepo)
	activitySvc := service.NewActivityService(userRepo)

	schema, err := graph.NewSchema(graph.Deps{
		Users:    userRepo,
		Channels: channelRepo,
		Worlds:   worldRepo,
		Activity: activitySvc,
		Online:   gw.Tracker(),
	})
	if err != nil {
		return nil, err
	}

	// Handlers
	oauthHandler := handler.NewDiscordOAuthHandler(cfg, authSvc, log)
	authHandler := handler.NewAuthHandler(cfg, authSvc, log)
	meHandler := handler.NewMeHandler(userRepo, gw.Tracker())
	activityHandler := handler.NewActivityHandler(activitySvc, log)
	channelHandler := handler.NewChannelHandler(channelRepo, worldRepo)
	worldHandler := handler.NewWorldHandler(worldRepo, gw.Tracker())
	presenceHandler := handler.NewPresenceHandler(gw.Tracker(), gw)

	r.GET("/healthz", presenceHandler.Health)

	r.GET("/auth/discord", oauthHandler.Redirect)
	r.GET("/auth/discord/callback", oauthHandler.Callback)
	r.POST("/auth/logout", authHandler.Logout)

	r.POST("/graphql", gin.WrapH(graph.Handler(schema)))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired())
	{
		api.POST("/auth/token", authHandler.Token)
		api.GET("/me", meHandler.GetMe)
		api.PATCH("/me/activity", activityHandler.NotifyActivity)
		api.GET("/presence/:id", presenceHandler.GetPresence)
		api.GET("/channels", channelHandler.List)
		api.POST("/channels", channelHandler.Create)
		api.GET("/worlds", worldHandler.List)
		api.POST("/worlds", worldHandler.Create)
		api.POST("/worlds/:id/join", worldHandler.Join)
	}
	return r, nil
}
