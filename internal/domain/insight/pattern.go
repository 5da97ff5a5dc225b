package insight

import (
	"time"

	"github.com/google/uuid"
)

// UserPattern is the per-(user, pattern_type) ledger row. IntegrationLevel is
// a saturating 1..5 counter; re-detections increment it, nothing here ever
// decrements it.
type UserPattern struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_pattern_type,priority:1" json:"user_id"`

	PatternType string `gorm:"column:pattern_type;not null;uniqueIndex:idx_user_pattern_type,priority:2" json:"pattern_type"`

	IntegrationLevel int `gorm:"column:integration_level;not null;default:1" json:"integration_level"`

	// Provenance of the first detection.
	Mirror         string     `gorm:"column:mirror;not null;index" json:"mirror"`
	ConversationID *uuid.UUID `gorm:"type:uuid;column:conversation_id" json:"conversation_id,omitempty"`
	MessageID      *uuid.UUID `gorm:"type:uuid;column:message_id" json:"message_id,omitempty"`
	ContextSnippet string     `gorm:"column:context_snippet;type:text;not null;default:''" json:"context_snippet"`

	LastDetectedAt time.Time `gorm:"column:last_detected_at;not null;default:now()" json:"last_detected_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserPattern) TableName() string { return "user_pattern" }
