package domain

import (
	"github.com/mirrorwell/mirrorwell-backend/internal/domain/chat"
	"github.com/mirrorwell/mirrorwell-backend/internal/domain/insight"
	"github.com/mirrorwell/mirrorwell-backend/internal/domain/journey"
	"github.com/mirrorwell/mirrorwell-backend/internal/domain/user"
)

type User = user.User

type Journey = journey.Journey
type UserSession = journey.UserSession
type Streak = journey.Streak
type Milestone = journey.Milestone
type UserMilestone = journey.UserMilestone

type Conversation = chat.Conversation
type ChatMessage = chat.ChatMessage

type UserPattern = insight.UserPattern
type UserInsight = insight.UserInsight

const (
	SessionLocked     = journey.SessionLocked
	SessionAvailable  = journey.SessionAvailable
	SessionInProgress = journey.SessionInProgress
	SessionCompleted  = journey.SessionCompleted

	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant

	TriggerTotalConversations  = journey.TriggerTotalConversations
	TriggerMirrorConversations = journey.TriggerMirrorConversations
	TriggerStreak              = journey.TriggerStreak
	TriggerPhaseComplete       = journey.TriggerPhaseComplete
	TriggerSessionComplete     = journey.TriggerSessionComplete
)
