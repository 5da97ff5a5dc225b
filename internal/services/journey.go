package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	domainjourney "github.com/mirrorwell/mirrorwell-backend/internal/domain/journey"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

// JourneyDashboard is the aggregate progression view behind GET /api/journey.
type JourneyDashboard struct {
	Journey        *types.Journey         `json:"journey"`
	Sessions       []*types.UserSession   `json:"sessions"`
	Streak         *types.Streak          `json:"streak,omitempty"`
	UnseenUnlocks  []*types.UserMilestone `json:"unseen_unlocks"`
	AllowedMirrors []string               `json:"allowed_mirrors"`
}

type JourneyService interface {
	// EnsureJourney lazily creates the per-user journey row. Safe to call on
	// every request path that needs one.
	EnsureJourney(dbc dbctx.Context, userID uuid.UUID) (*types.Journey, error)

	// RecordConversationActivity bumps the mirror and total counters for one
	// completed turn and applies the phase-threshold transition.
	RecordConversationActivity(dbc dbctx.Context, userID uuid.UUID, mirrorSlug string) (*types.Journey, []*types.Milestone, error)

	Dashboard(dbc dbctx.Context) (*JourneyDashboard, error)

	// Restart returns every session slot to locked (first slot to available)
	// once the tier's full curriculum is completed. Insights and patterns
	// survive; only progress scaffolding is cleared.
	Restart(dbc dbctx.Context) error
}

type journeyService struct {
	db             *gorm.DB
	log            *logger.Logger
	users          repos.UserRepo
	journeys       repos.JourneyRepo
	sessions       repos.UserSessionRepo
	streaks        repos.StreakRepo
	userMilestones repos.UserMilestoneRepo
	milestoneSvc   MilestoneService
	notify         Notifier
}

func NewJourneyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	journeyRepo repos.JourneyRepo,
	sessionRepo repos.UserSessionRepo,
	streakRepo repos.StreakRepo,
	userMilestoneRepo repos.UserMilestoneRepo,
	milestoneService MilestoneService,
	notify Notifier,
) JourneyService {
	return &journeyService{
		db:             db,
		log:            baseLog.With("service", "JourneyService"),
		users:          userRepo,
		journeys:       journeyRepo,
		sessions:       sessionRepo,
		streaks:        streakRepo,
		userMilestones: userMilestoneRepo,
		milestoneSvc:   milestoneService,
		notify:         notify,
	}
}

func (s *journeyService) EnsureJourney(dbc dbctx.Context, userID uuid.UUID) (*types.Journey, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	j, err := s.journeys.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journey: %w", err)
	}
	if j != nil {
		return j, nil
	}

	now := time.Now().UTC()
	j = &types.Journey{
		ID:                  uuid.New(),
		UserID:              userID,
		CurrentPhase:        string(mirrors.DefaultPhase()),
		FoundationStartedAt: &now,
	}
	if _, err := s.journeys.Create(dbc, []*types.Journey{j}); err != nil {
		// Lost a create race; the winner's row is authoritative.
		existing, getErr := s.journeys.GetByUserID(dbc, userID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create journey: %w", err)
	}
	return j, nil
}

func (s *journeyService) RecordConversationActivity(dbc dbctx.Context, userID uuid.UUID, mirrorSlug string) (*types.Journey, []*types.Milestone, error) {
	mirror, ok := mirrors.BySlug(mirrorSlug)
	if !ok {
		return nil, nil, fmt.Errorf("unknown mirror %q", mirrorSlug)
	}
	if _, err := s.EnsureJourney(dbc, userID); err != nil {
		return nil, nil, err
	}

	if err := s.journeys.IncrementConversationCounters(dbc, userID, mirrorSlug); err != nil {
		return nil, nil, fmt.Errorf("failed to increment conversation counters: %w", err)
	}
	j, err := s.journeys.GetByUserID(dbc, userID)
	if err != nil || j == nil {
		return nil, nil, fmt.Errorf("failed to reload journey: %w", err)
	}

	var unlocked []*types.Milestone
	if s.milestoneSvc != nil {
		unlocked = s.milestoneSvc.OnConversationActivity(dbc, userID, mirrorSlug, j.ConversationCount(mirrorSlug), j.TotalConversations)
	}

	if err := s.applyPhaseThreshold(dbc, j, mirror); err != nil {
		s.log.Warn("phase threshold update failed", "user_id", userID, "mirror", mirrorSlug, "error", err)
	}

	return j, unlocked, nil
}

// applyPhaseThreshold marks the mirror's phase complete once its conversation
// count crosses the configured threshold, and advances current_phase only when
// the journey is still nominally in that phase.
func (s *journeyService) applyPhaseThreshold(dbc dbctx.Context, j *types.Journey, mirror mirrors.Mirror) error {
	phase := string(mirror.Phase)
	if j.ConversationCount(mirror.Slug) < mirror.CompletionThreshold || j.PhaseComplete(phase) {
		return nil
	}

	updates := map[string]interface{}{}
	completeCol, ok := domainjourney.PhaseCompleteColumn(phase)
	if !ok {
		return fmt.Errorf("no completion column for phase %q", phase)
	}
	updates[completeCol] = true

	advanced := ""
	if j.CurrentPhase == phase {
		next := mirrors.NextPhase(mirror.Phase)
		updates["current_phase"] = string(next)
		advanced = string(next)
		if col, ok := domainjourney.PhaseStartedAtColumn(string(next)); ok && j.PhaseStartedAt(string(next)) == nil {
			updates[col] = time.Now().UTC()
		}
	}

	if err := s.journeys.UpdateFieldsByUserID(dbc, j.UserID, updates); err != nil {
		return err
	}
	if advanced != "" {
		j.CurrentPhase = advanced
		if s.notify != nil {
			s.notify.PhaseAdvanced(dbc.Ctx, j.UserID, advanced)
		}
		s.log.Info("journey phase advanced", "user_id", j.UserID, "phase", advanced)
	}
	return nil
}

func (s *journeyService) Dashboard(dbc dbctx.Context) (*JourneyDashboard, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}

	users, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil || len(users) == 0 {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	tier := mirrors.NormalizeTier(users[0].SubscriptionTier)

	j, err := s.EnsureJourney(dbc, rd.UserID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	streak, err := s.streaks.GetByUserID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streak: %w", err)
	}
	unseen, err := s.userMilestones.ListUnseenByUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unseen milestones: %w", err)
	}

	return &JourneyDashboard{
		Journey:        j,
		Sessions:       sessions,
		Streak:         streak,
		UnseenUnlocks:  unseen,
		AllowedMirrors: mirrors.AllowedMirrors(tier),
	}, nil
}

func (s *journeyService) Restart(dbc dbctx.Context) error {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}

	users, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil || len(users) == 0 {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	tier := mirrors.NormalizeTier(users[0].SubscriptionTier)
	required := mirrors.TotalSessions(tier)

	completed, err := s.sessions.CountByUserStatus(dbc, rd.UserID, types.SessionCompleted)
	if err != nil {
		return fmt.Errorf("failed to count completed sessions: %w", err)
	}
	if completed < int64(required) {
		return apierr.New(http.StatusConflict, "journey_not_complete",
			fmt.Errorf("journey not complete: %d of %d sessions", completed, required))
	}

	if err := s.sessions.ResetAllToLocked(dbc, rd.UserID); err != nil {
		return fmt.Errorf("failed to reset sessions: %w", err)
	}
	first := mirrors.First()
	if err := s.sessions.UpdateFields(dbc, rd.UserID, first.Slug, 1, map[string]interface{}{
		"status": types.SessionAvailable,
	}); err != nil {
		return fmt.Errorf("failed to reopen first session: %w", err)
	}

	s.log.Info("journey restarted", "user_id", rd.UserID, "completed_sessions", completed)
	return nil
}
