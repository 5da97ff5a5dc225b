package app

import (
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type Repos struct {
	User          repos.UserRepo
	Journey       repos.JourneyRepo
	UserSession   repos.UserSessionRepo
	Streak        repos.StreakRepo
	Milestone     repos.MilestoneRepo
	UserMilestone repos.UserMilestoneRepo
	Conversation  repos.ConversationRepo
	ChatMessage   repos.ChatMessageRepo
	UserPattern   repos.UserPatternRepo
	UserInsight   repos.UserInsightRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		Journey:       repos.NewJourneyRepo(db, log),
		UserSession:   repos.NewUserSessionRepo(db, log),
		Streak:        repos.NewStreakRepo(db, log),
		Milestone:     repos.NewMilestoneRepo(db, log),
		UserMilestone: repos.NewUserMilestoneRepo(db, log),
		Conversation:  repos.NewConversationRepo(db, log),
		ChatMessage:   repos.NewChatMessageRepo(db, log),
		UserPattern:   repos.NewUserPatternRepo(db, log),
		UserInsight:   repos.NewUserInsightRepo(db, log),
	}
}
