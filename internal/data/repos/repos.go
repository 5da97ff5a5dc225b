package repos

import (
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos/chat"
	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos/insight"
	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos/journey"
	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos/user"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type JourneyRepo = journey.JourneyRepo
type UserSessionRepo = journey.UserSessionRepo
type StreakRepo = journey.StreakRepo
type MilestoneRepo = journey.MilestoneRepo
type UserMilestoneRepo = journey.UserMilestoneRepo

type ConversationRepo = chat.ConversationRepo
type ChatMessageRepo = chat.ChatMessageRepo

type UserPatternRepo = insight.UserPatternRepo
type UserInsightRepo = insight.UserInsightRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewJourneyRepo(db *gorm.DB, baseLog *logger.Logger) JourneyRepo {
	return journey.NewJourneyRepo(db, baseLog)
}
func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
	return journey.NewUserSessionRepo(db, baseLog)
}
func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return journey.NewStreakRepo(db, baseLog)
}
func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return journey.NewMilestoneRepo(db, baseLog)
}
func NewUserMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) UserMilestoneRepo {
	return journey.NewUserMilestoneRepo(db, baseLog)
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, baseLog)
}
func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, baseLog)
}

func NewUserPatternRepo(db *gorm.DB, baseLog *logger.Logger) UserPatternRepo {
	return insight.NewUserPatternRepo(db, baseLog)
}
func NewUserInsightRepo(db *gorm.DB, baseLog *logger.Logger) UserInsightRepo {
	return insight.NewUserInsightRepo(db, baseLog)
}
