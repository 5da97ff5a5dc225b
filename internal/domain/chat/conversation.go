package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Mirror string `gorm:"column:mirror;not null;index" json:"mirror"`

	// Title is derived from the first user message once, then left alone.
	Title    string `gorm:"column:title;not null;default:''" json:"title"`
	Language string `gorm:"column:language;not null;default:'en'" json:"language"`

	MessageCount int `gorm:"column:message_count;not null;default:0" json:"message_count"`

	// JourneyPhaseAtCreation is a snapshot; the journey may advance afterwards.
	JourneyPhaseAtCreation string `gorm:"column:journey_phase_at_creation;not null;default:'foundation'" json:"journey_phase_at_creation"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Conversation) TableName() string { return "conversation" }
