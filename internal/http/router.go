package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/mirrorwell/mirrorwell-backend/internal/http/handlers"
	httpMW "github.com/mirrorwell/mirrorwell-backend/internal/http/middleware"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	ChatHandler      *httpH.ChatHandler
	SessionHandler   *httpH.SessionHandler
	JourneyHandler   *httpH.JourneyHandler
	PatternHandler   *httpH.PatternHandler
	MilestoneHandler *httpH.MilestoneHandler
	BillingHandler   *httpH.BillingHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
		// Authenticated by shared secret, not a user token.
		if cfg.BillingHandler != nil {
			api.POST("/billing/tier-change", cfg.BillingHandler.TierChange)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PUT("/me/language", cfg.UserHandler.UpdateLanguage)
		}

		if cfg.ChatHandler != nil {
			protected.POST("/chat/turn", cfg.ChatHandler.Turn)
			protected.GET("/chat/conversations", cfg.ChatHandler.ListConversations)
			protected.GET("/chat/conversations/:id", cfg.ChatHandler.GetConversation)
		}

		if cfg.SessionHandler != nil {
			protected.GET("/mirrors/:mirror/sessions", cfg.SessionHandler.ListForMirror)
			protected.POST("/sessions/start", cfg.SessionHandler.Start)
			protected.POST("/sessions/complete", cfg.SessionHandler.Complete)
		}

		if cfg.JourneyHandler != nil {
			protected.GET("/journey", cfg.JourneyHandler.Dashboard)
			protected.POST("/journey/restart", cfg.JourneyHandler.Restart)
		}

		if cfg.PatternHandler != nil {
			protected.GET("/patterns", cfg.PatternHandler.ListForUser)
			protected.GET("/insights", cfg.PatternHandler.ListInsights)
		}

		if cfg.MilestoneHandler != nil {
			protected.GET("/milestones", cfg.MilestoneHandler.ListForUser)
			protected.POST("/milestones/:key/seen", cfg.MilestoneHandler.MarkSeen)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
