package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

type MilestoneService interface {
	// Unlock resolves the catalog row for the trigger and records it for the
	// user. Returns (nil, false) when no milestone matches the trigger, and
	// (milestone, false) when the user already had it.
	Unlock(dbc dbctx.Context, userID uuid.UUID, triggerType, triggerValue string) (*types.Milestone, bool, error)

	// OnConversationActivity fires count-based triggers after journey counters
	// have been incremented. Errors are logged, not returned; milestone
	// bookkeeping must never fail the activity that caused it.
	OnConversationActivity(dbc dbctx.Context, userID uuid.UUID, mirror string, mirrorCount, totalCount int) []*types.Milestone
	OnSessionComplete(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int) []*types.Milestone
	OnStreak(dbc dbctx.Context, userID uuid.UUID, days int) []*types.Milestone

	ListForUser(dbc dbctx.Context) ([]*types.UserMilestone, error)
	MarkSeen(dbc dbctx.Context, milestoneKey string) error
}

type milestoneService struct {
	db             *gorm.DB
	log            *logger.Logger
	milestones     repos.MilestoneRepo
	userMilestones repos.UserMilestoneRepo
	journeys       repos.JourneyRepo
	notify         Notifier
}

func NewMilestoneService(
	db *gorm.DB,
	baseLog *logger.Logger,
	milestoneRepo repos.MilestoneRepo,
	userMilestoneRepo repos.UserMilestoneRepo,
	journeyRepo repos.JourneyRepo,
	notify Notifier,
) MilestoneService {
	return &milestoneService{
		db:             db,
		log:            baseLog.With("service", "MilestoneService"),
		milestones:     milestoneRepo,
		userMilestones: userMilestoneRepo,
		journeys:       journeyRepo,
		notify:         notify,
	}
}

func (s *milestoneService) Unlock(dbc dbctx.Context, userID uuid.UUID, triggerType, triggerValue string) (*types.Milestone, bool, error) {
	milestone, err := s.milestones.GetByTrigger(dbc, triggerType, triggerValue)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve milestone trigger: %w", err)
	}
	if milestone == nil {
		return nil, false, nil
	}

	created, err := s.userMilestones.Unlock(dbc, userID, milestone.Key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unlock milestone %s: %w", milestone.Key, err)
	}
	if !created {
		return milestone, false, nil
	}

	if err := s.appendToJourney(dbc, userID, milestone.Key); err != nil {
		s.log.Warn("failed to append milestone key to journey", "user_id", userID, "key", milestone.Key, "error", err)
	}
	if s.notify != nil {
		s.notify.MilestoneUnlocked(dbc.Ctx, userID, milestone)
	}
	s.log.Info("milestone unlocked", "user_id", userID, "key", milestone.Key)
	return milestone, true, nil
}

func (s *milestoneService) OnConversationActivity(dbc dbctx.Context, userID uuid.UUID, mirror string, mirrorCount, totalCount int) []*types.Milestone {
	var unlocked []*types.Milestone
	unlocked = s.tryUnlock(dbc, userID, unlocked, types.TriggerTotalConversations, strconv.Itoa(totalCount))
	unlocked = s.tryUnlock(dbc, userID, unlocked, types.TriggerMirrorConversations, mirror+":"+strconv.Itoa(mirrorCount))
	return unlocked
}

func (s *milestoneService) OnSessionComplete(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int) []*types.Milestone {
	var unlocked []*types.Milestone
	unlocked = s.tryUnlock(dbc, userID, unlocked, types.TriggerSessionComplete, mirror+":"+strconv.Itoa(sessionNumber))
	if sessionNumber == mirrors.SessionsPerMirror {
		unlocked = s.tryUnlock(dbc, userID, unlocked, types.TriggerPhaseComplete, mirror)
	}
	return unlocked
}

func (s *milestoneService) OnStreak(dbc dbctx.Context, userID uuid.UUID, days int) []*types.Milestone {
	return s.tryUnlock(dbc, userID, nil, types.TriggerStreak, strconv.Itoa(days))
}

func (s *milestoneService) tryUnlock(dbc dbctx.Context, userID uuid.UUID, acc []*types.Milestone, triggerType, triggerValue string) []*types.Milestone {
	milestone, created, err := s.Unlock(dbc, userID, triggerType, triggerValue)
	if err != nil {
		s.log.Warn("milestone unlock failed", "user_id", userID, "trigger_type", triggerType, "trigger_value", triggerValue, "error", err)
		return acc
	}
	if created {
		acc = append(acc, milestone)
	}
	return acc
}

// appendToJourney keeps the journey's denormalized milestones_unlocked array
// in sync with the user_milestone rows.
func (s *milestoneService) appendToJourney(dbc dbctx.Context, userID uuid.UUID, key string) error {
	j, err := s.journeys.GetByUserID(dbc, userID)
	if err != nil {
		return err
	}
	if j == nil {
		return nil
	}

	var keys []string
	if len(j.MilestonesUnlocked) > 0 {
		if err := json.Unmarshal(j.MilestonesUnlocked, &keys); err != nil {
			s.log.Warn("unreadable milestones_unlocked array, rebuilding", "user_id", userID, "error", err)
			keys = nil
		}
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	keys = append(keys, key)

	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return s.journeys.UpdateFieldsByUserID(dbc, userID, map[string]interface{}{
		"milestones_unlocked": raw,
	})
}

func (s *milestoneService) ListForUser(dbc dbctx.Context) ([]*types.UserMilestone, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	return s.userMilestones.ListByUser(dbc, rd.UserID)
}

func (s *milestoneService) MarkSeen(dbc dbctx.Context, milestoneKey string) error {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	if milestoneKey == "" {
		return apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("missing milestone key"))
	}
	return s.userMilestones.MarkSeen(dbc, rd.UserID, milestoneKey)
}
