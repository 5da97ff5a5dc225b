package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage rows are immutable once written; partial assistant output saved
// after a stream fault is marked via Metadata {"partial": true}.
type ChatMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_message_conv_created,priority:1" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Role    string `gorm:"column:role;not null;index" json:"role"`
	Content string `gorm:"column:content;type:text;not null;default:''" json:"content"`

	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_chat_message_conv_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }
