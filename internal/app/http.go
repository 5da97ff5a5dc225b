package app

import (
	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http"
	httpH "github.com/mirrorwell/mirrorwell-backend/internal/http/handlers"
	httpMW "github.com/mirrorwell/mirrorwell-backend/internal/http/middleware"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Chat      *httpH.ChatHandler
	Session   *httpH.SessionHandler
	Journey   *httpH.JourneyHandler
	Pattern   *httpH.PatternHandler
	Milestone *httpH.MilestoneHandler
	Billing   *httpH.BillingHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Auth:      httpH.NewAuthHandler(services.Auth),
		User:      httpH.NewUserHandler(services.User),
		Chat:      httpH.NewChatHandler(log, services.Chat),
		Session:   httpH.NewSessionHandler(services.Session),
		Journey:   httpH.NewJourneyHandler(services.Journey),
		Pattern:   httpH.NewPatternHandler(services.Pattern, services.Context),
		Milestone: httpH.NewMilestoneHandler(services.Milestone),
		Billing:   httpH.NewBillingHandler(log, services.User, cfg.BillingWebhookSecret),
		Realtime:  httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		UserHandler:      handlers.User,
		ChatHandler:      handlers.Chat,
		SessionHandler:   handlers.Session,
		JourneyHandler:   handlers.Journey,
		PatternHandler:   handlers.Pattern,
		MilestoneHandler: handlers.Milestone,
		BillingHandler:   handlers.Billing,
		RealtimeHandler:  handlers.Realtime,
	})
}
