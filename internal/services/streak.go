package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type StreakService interface {
	// Touch records practice activity for the given day. changed is false for
	// a same-day repeat, in which case the stored row is returned untouched.
	Touch(dbc dbctx.Context, userID uuid.UUID, now time.Time) (streak *types.Streak, changed bool, err error)
	GetForUser(dbc dbctx.Context, userID uuid.UUID) (*types.Streak, error)
}

type streakService struct {
	db      *gorm.DB
	log     *logger.Logger
	streaks repos.StreakRepo
}

func NewStreakService(db *gorm.DB, baseLog *logger.Logger, streakRepo repos.StreakRepo) StreakService {
	return &streakService{
		db:      db,
		log:     baseLog.With("service", "StreakService"),
		streaks: streakRepo,
	}
}

func (s *streakService) GetForUser(dbc dbctx.Context, userID uuid.UUID) (*types.Streak, error) {
	return s.streaks.GetByUserID(dbc, userID)
}

func (s *streakService) Touch(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.Streak, bool, error) {
	if userID == uuid.Nil {
		return nil, false, fmt.Errorf("missing user_id")
	}

	row, err := s.streaks.GetByUserID(dbc, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch streak: %w", err)
	}

	if row == nil {
		day := now.UTC()
		row = &types.Streak{
			ID:              uuid.New(),
			UserID:          userID,
			CurrentStreak:   1,
			LongestStreak:   1,
			LastSessionDate: &day,
		}
		if _, err := s.streaks.Create(dbc, []*types.Streak{row}); err != nil {
			return nil, false, fmt.Errorf("failed to create streak: %w", err)
		}
		return row, true, nil
	}

	current, longest, changed := nextStreak(row.CurrentStreak, row.LongestStreak, row.LastSessionDate, now)
	if !changed {
		return row, false, nil
	}

	day := now.UTC()
	if err := s.streaks.UpdateFieldsByUserID(dbc, userID, map[string]interface{}{
		"current_streak":    current,
		"longest_streak":    longest,
		"last_session_date": day,
	}); err != nil {
		return nil, false, fmt.Errorf("failed to update streak: %w", err)
	}

	row.CurrentStreak = current
	row.LongestStreak = longest
	row.LastSessionDate = &day
	return row, true, nil
}

// nextStreak applies the day-granularity increment rule: same day is a no-op,
// exactly the previous day increments, any larger gap resets to 1.
func nextStreak(current, longest int, last *time.Time, now time.Time) (newCurrent, newLongest int, changed bool) {
	today := dayOf(now)

	if last == nil {
		newCurrent = 1
	} else {
		switch lastDay := dayOf(*last); {
		case lastDay.Equal(today):
			return current, longest, false
		case lastDay.AddDate(0, 0, 1).Equal(today):
			newCurrent = current + 1
		default:
			newCurrent = 1
		}
	}

	newLongest = longest
	if newCurrent > newLongest {
		newLongest = newCurrent
	}
	return newCurrent, newLongest, true
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
