package journey

import (
	"time"

	"github.com/google/uuid"
)

// UserSession statuses. Slots move locked -> available -> in_progress ->
// completed; only a whole-journey restart returns completed slots to locked.
const (
	SessionLocked     = "locked"
	SessionAvailable  = "available"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

type UserSession struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_session_slot,priority:1" json:"user_id"`

	Mirror        string `gorm:"column:mirror;not null;uniqueIndex:idx_user_session_slot,priority:2" json:"mirror"`
	SessionNumber int    `gorm:"column:session_number;not null;uniqueIndex:idx_user_session_slot,priority:3" json:"session_number"`

	Status string `gorm:"column:status;not null;default:'locked';index" json:"status"`

	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	ConversationID *uuid.UUID `gorm:"type:uuid;column:conversation_id" json:"conversation_id,omitempty"`
	ExitInsight    string     `gorm:"column:exit_insight;type:text;not null;default:''" json:"exit_insight,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserSession) TableName() string { return "user_session" }
