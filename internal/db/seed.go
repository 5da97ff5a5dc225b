package db

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
)

// SeedMilestoneCatalog inserts the milestone catalog, leaving existing keys
// untouched so reseeding on every boot is safe.
func (s *PostgresService) SeedMilestoneCatalog() error {
	s.log.Info("Seeding milestone catalog...")
	return SeedMilestoneCatalog(s.db)
}

func SeedMilestoneCatalog(gdb *gorm.DB) error {
	rows := MilestoneCatalog()
	return gdb.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// MilestoneCatalog builds the full catalog: global conversation counts,
// streaks, per-mirror phase completions, and one milestone per session slot.
func MilestoneCatalog() []*types.Milestone {
	rows := []*types.Milestone{
		{
			Key:          "first_conversation",
			TriggerType:  types.TriggerTotalConversations,
			TriggerValue: "1",
			Title:        "First Reflection",
			Description:  "You spoke with a mirror for the first time.",
		},
		{
			Key:          "conversations_50",
			TriggerType:  types.TriggerTotalConversations,
			TriggerValue: "50",
			Title:        "Deep Diver",
			Description:  "Fifty conversations across your mirrors.",
		},
		{
			Key:          "soma_depth_5",
			TriggerType:  types.TriggerMirrorConversations,
			TriggerValue: "soma:5",
			Title:        "Listening Inward",
			Description:  "Five conversations with Soma.",
		},
		{
			Key:          "streak_7",
			TriggerType:  types.TriggerStreak,
			TriggerValue: "7",
			Title:        "One Week Steady",
			Description:  "Seven days of practice in a row.",
		},
		{
			Key:          "streak_30",
			TriggerType:  types.TriggerStreak,
			TriggerValue: "30",
			Title:        "One Month Steady",
			Description:  "Thirty days of practice in a row.",
		},
	}

	for _, m := range mirrors.All() {
		rows = append(rows, &types.Milestone{
			Key:          fmt.Sprintf("phase_%s_complete", m.Phase),
			TriggerType:  types.TriggerPhaseComplete,
			TriggerValue: m.Slug,
			Title:        fmt.Sprintf("%s Complete", m.Name),
			Description:  fmt.Sprintf("You finished all seven sessions with %s.", m.Name),
		})
		for n := 1; n <= mirrors.SessionsPerMirror; n++ {
			rows = append(rows, &types.Milestone{
				Key:          fmt.Sprintf("session_%s_%d", m.Slug, n),
				TriggerType:  types.TriggerSessionComplete,
				TriggerValue: m.Slug + ":" + strconv.Itoa(n),
				Title:        fmt.Sprintf("%s Session %d", m.Name, n),
				Description:  fmt.Sprintf("Session %d with %s complete.", n, m.Name),
			})
		}
	}

	for _, row := range rows {
		row.ID = uuid.New()
	}
	return rows
}
