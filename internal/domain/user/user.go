package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`

	// SubscriptionTier is mutated by the billing webhook; everything that
	// depends on it resolves through mirrors.NormalizeTier first.
	SubscriptionTier string `gorm:"column:subscription_tier;not null;default:'free';index" json:"subscription_tier"`

	// MonthlyMessageCount rolls over at calendar-month boundaries, detected by
	// comparing LastResetDate against now at the start of a chat turn.
	MonthlyMessageCount int       `gorm:"column:monthly_message_count;not null;default:0" json:"monthly_message_count"`
	LastResetDate       time.Time `gorm:"column:last_reset_date;not null;default:now()" json:"last_reset_date"`

	LanguagePreference string `gorm:"column:language_preference;not null;default:'en'" json:"language_preference"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
