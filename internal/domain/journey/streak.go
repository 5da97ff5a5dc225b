package journey

import (
	"time"

	"github.com/google/uuid"
)

// Streak tracks consecutive calendar days with at least one completed session.
type Streak struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	CurrentStreak int `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak int `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`

	// LastSessionDate is compared at day granularity.
	LastSessionDate *time.Time `gorm:"column:last_session_date" json:"last_session_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Streak) TableName() string { return "streak" }
