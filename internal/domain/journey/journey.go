package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Journey is the single per-user progression row across all mirrors.
// Per-mirror conversation counters are explicit columns resolved through the
// accessor methods below rather than by interpolating column names.
type Journey struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// CurrentPhase only moves forward, never regresses.
	CurrentPhase string `gorm:"column:current_phase;not null;default:'foundation';index" json:"current_phase"`

	SomaConversations    int `gorm:"column:soma_conversations;not null;default:0" json:"soma_conversations"`
	PulseConversations   int `gorm:"column:pulse_conversations;not null;default:0" json:"pulse_conversations"`
	HorizonConversations int `gorm:"column:horizon_conversations;not null;default:0" json:"horizon_conversations"`
	AtlasConversations   int `gorm:"column:atlas_conversations;not null;default:0" json:"atlas_conversations"`
	TotalConversations   int `gorm:"column:total_conversations;not null;default:0" json:"total_conversations"`

	FoundationComplete  bool `gorm:"column:foundation_complete;not null;default:false" json:"foundation_complete"`
	RegulationComplete  bool `gorm:"column:regulation_complete;not null;default:false" json:"regulation_complete"`
	ExpansionComplete   bool `gorm:"column:expansion_complete;not null;default:false" json:"expansion_complete"`
	IntegrationComplete bool `gorm:"column:integration_complete;not null;default:false" json:"integration_complete"`

	FoundationStartedAt  *time.Time `gorm:"column:foundation_started_at" json:"foundation_started_at,omitempty"`
	RegulationStartedAt  *time.Time `gorm:"column:regulation_started_at" json:"regulation_started_at,omitempty"`
	ExpansionStartedAt   *time.Time `gorm:"column:expansion_started_at" json:"expansion_started_at,omitempty"`
	IntegrationStartedAt *time.Time `gorm:"column:integration_started_at" json:"integration_started_at,omitempty"`

	// MilestonesUnlocked is an append-only JSON array of milestone keys.
	MilestonesUnlocked datatypes.JSON `gorm:"type:jsonb;column:milestones_unlocked;not null;default:'[]'" json:"milestones_unlocked"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Journey) TableName() string { return "journey" }

// ConversationCount returns the counter for the given mirror slug.
func (j *Journey) ConversationCount(slug string) int {
	switch slug {
	case "soma":
		return j.SomaConversations
	case "pulse":
		return j.PulseConversations
	case "horizon":
		return j.HorizonConversations
	case "atlas":
		return j.AtlasConversations
	default:
		return 0
	}
}

// ConversationCountColumn maps a mirror slug to its counter column. The
// explicit table replaces dynamic field-name construction.
func ConversationCountColumn(slug string) (string, bool) {
	switch slug {
	case "soma":
		return "soma_conversations", true
	case "pulse":
		return "pulse_conversations", true
	case "horizon":
		return "horizon_conversations", true
	case "atlas":
		return "atlas_conversations", true
	default:
		return "", false
	}
}

// PhaseComplete reports whether the given phase is marked complete.
func (j *Journey) PhaseComplete(phase string) bool {
	switch phase {
	case "foundation":
		return j.FoundationComplete
	case "regulation":
		return j.RegulationComplete
	case "expansion":
		return j.ExpansionComplete
	case "integration":
		return j.IntegrationComplete
	default:
		return false
	}
}

// PhaseCompleteColumn maps a phase to its completion flag column.
func PhaseCompleteColumn(phase string) (string, bool) {
	switch phase {
	case "foundation":
		return "foundation_complete", true
	case "regulation":
		return "regulation_complete", true
	case "expansion":
		return "expansion_complete", true
	case "integration":
		return "integration_complete", true
	default:
		return "", false
	}
}

// PhaseStartedAtColumn maps a phase to its start-timestamp column.
func PhaseStartedAtColumn(phase string) (string, bool) {
	switch phase {
	case "foundation":
		return "foundation_started_at", true
	case "regulation":
		return "regulation_started_at", true
	case "expansion":
		return "expansion_started_at", true
	case "integration":
		return "integration_started_at", true
	default:
		return "", false
	}
}

// PhaseStartedAt returns the start timestamp for the given phase.
func (j *Journey) PhaseStartedAt(phase string) *time.Time {
	switch phase {
	case "foundation":
		return j.FoundationStartedAt
	case "regulation":
		return j.RegulationStartedAt
	case "expansion":
		return j.ExpansionStartedAt
	case "integration":
		return j.IntegrationStartedAt
	default:
		return nil
	}
}
