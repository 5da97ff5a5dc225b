package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/patterns"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/openai"
	"github.com/mirrorwell/mirrorwell-backend/internal/realtime"
	"github.com/mirrorwell/mirrorwell-backend/internal/realtime/bus"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	User      services.UserService
	Streak    services.StreakService
	Milestone services.MilestoneService
	Journey   services.JourneyService
	Session   services.SessionService
	Pattern   services.PatternService
	Context   services.ContextService
	Chat      services.ChatService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, sseHub *realtime.SSEHub, sseBus bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	notifier := services.NewNotifier(log, sseHub, sseBus)

	aiClient, err := openai.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}

	streakService := services.NewStreakService(db, log, repos.Streak)
	milestoneService := services.NewMilestoneService(db, log, repos.Milestone, repos.UserMilestone, repos.Journey, notifier)
	journeyService := services.NewJourneyService(db, log, repos.User, repos.Journey, repos.UserSession, repos.Streak, repos.UserMilestone, milestoneService, notifier)
	sessionService := services.NewSessionService(db, log, repos.User, repos.UserSession, repos.UserInsight, streakService, milestoneService, notifier)
	patternService := services.NewPatternService(db, log, repos.UserPattern, patterns.NewKeywordDetector())
	contextService := services.NewContextService(db, log, repos.UserPattern, repos.UserInsight)
	chatService := services.NewChatService(db, log, repos.User, repos.Conversation, repos.ChatMessage, journeyService, contextService, patternService, aiClient)
	authService := services.NewAuthService(db, log, repos.User, journeyService, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	userService := services.NewUserService(db, log, repos.User)

	return Services{
		Auth:      authService,
		User:      userService,
		Streak:    streakService,
		Milestone: milestoneService,
		Journey:   journeyService,
		Session:   sessionService,
		Pattern:   patternService,
		Context:   contextService,
		Chat:      chatService,
	}, nil
}
