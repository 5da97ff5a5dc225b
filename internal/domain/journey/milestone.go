package journey

import (
	"time"

	"github.com/google/uuid"
)

// Milestone trigger types. TriggerValue disambiguates within a type, e.g.
// ("total_conversations", "50") or ("session_complete", "soma:3").
const (
	TriggerTotalConversations  = "total_conversations"
	TriggerMirrorConversations = "mirror_conversations"
	TriggerStreak              = "streak"
	TriggerPhaseComplete       = "phase_complete"
	TriggerSessionComplete     = "session_complete"
)

// Milestone is a catalog row seeded at migration time.
type Milestone struct {
	ID  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Key string    `gorm:"column:key;not null;uniqueIndex" json:"key"`

	TriggerType  string `gorm:"column:trigger_type;not null;uniqueIndex:idx_milestone_trigger,priority:1" json:"trigger_type"`
	TriggerValue string `gorm:"column:trigger_value;not null;uniqueIndex:idx_milestone_trigger,priority:2" json:"trigger_value"`

	Title       string `gorm:"column:title;not null" json:"title"`
	Description string `gorm:"column:description;type:text;not null;default:''" json:"description"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Milestone) TableName() string { return "milestone" }

// UserMilestone is the idempotent unlock record; duplicate triggers are no-ops
// by virtue of the unique (user_id, milestone_key) index.
type UserMilestone struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_milestone,priority:1" json:"user_id"`
	MilestoneKey string    `gorm:"column:milestone_key;not null;uniqueIndex:idx_user_milestone,priority:2" json:"milestone_key"`

	// Seen flips true once the UI has shown the unlock.
	Seen bool `gorm:"column:seen;not null;default:false;index" json:"seen"`

	UnlockedAt time.Time `gorm:"column:unlocked_at;not null;default:now()" json:"unlocked_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserMilestone) TableName() string { return "user_milestone" }
