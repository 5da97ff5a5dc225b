package insight

import (
	"time"

	"github.com/google/uuid"
)

// UserInsight is a free-text reflection captured at session exit. Append-only,
// never deduplicated, and deliberately preserved across journey restarts.
type UserInsight struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Mirror        string `gorm:"column:mirror;not null;index" json:"mirror"`
	SessionNumber int    `gorm:"column:session_number;not null;default:0" json:"session_number"`

	Content string `gorm:"column:content;type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserInsight) TableName() string { return "user_insight" }
