package services

import (
	"fmt"
	"net/http"
	"time"

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

type CompleteSessionInput struct {
	Mirror         string
	SessionNumber  int
	ConversationID *uuid.UUID
	ExitInsight    string
}

type CompleteSessionResult struct {
	Session *types.UserSession `json:"session"`

	// NextMirror/NextSession point at the slot unlocked by this completion.
	// Both are empty when the curriculum has no successor slot.
	NextMirror  string `json:"next_mirror,omitempty"`
	NextSession *int   `json:"next_session,omitempty"`

	Streak     *types.Streak      `json:"streak,omitempty"`
	Milestones []*types.Milestone `json:"milestones,omitempty"`
}

type SessionService interface {
	// ListForMirror returns the user's 7-slot ladder for the mirror, seeding
	// it lazily on first access.
	ListForMirror(dbc dbctx.Context, mirrorSlug string) ([]*types.UserSession, error)

	Start(dbc dbctx.Context, mirrorSlug string, sessionNumber int) (*types.UserSession, error)
	Complete(dbc dbctx.Context, in CompleteSessionInput) (*CompleteSessionResult, error)
}

type sessionService struct {
	db           *gorm.DB
	log          *logger.Logger
	users        repos.UserRepo
	sessions     repos.UserSessionRepo
	insights     repos.UserInsightRepo
	streakSvc    StreakService
	milestoneSvc MilestoneService
	notify       Notifier
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	sessionRepo repos.UserSessionRepo,
	insightRepo repos.UserInsightRepo,
	streakService StreakService,
	milestoneService MilestoneService,
	notify Notifier,
) SessionService {
	return &sessionService{
		db:           db,
		log:          baseLog.With("service", "SessionService"),
		users:        userRepo,
		sessions:     sessionRepo,
		insights:     insightRepo,
		streakSvc:    streakService,
		milestoneSvc: milestoneService,
		notify:       notify,
	}
}

func (s *sessionService) requireAccess(dbc dbctx.Context, mirrorSlug string) (uuid.UUID, mirrors.Mirror, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, mirrors.Mirror{}, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	mirror, ok := mirrors.BySlug(mirrorSlug)
	if !ok {
		return uuid.Nil, mirrors.Mirror{}, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("unknown mirror %q", mirrorSlug))
	}

	users, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil || len(users) == 0 {
		return uuid.Nil, mirrors.Mirror{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	tier := mirrors.NormalizeTier(users[0].SubscriptionTier)
	if !mirrors.CanAccessMirror(tier, mirrorSlug) {
		return uuid.Nil, mirrors.Mirror{}, apierr.New(http.StatusForbidden, "access_denied",
			fmt.Errorf("tier %s does not include mirror %s", tier, mirrorSlug))
	}
	return rd.UserID, mirror, nil
}

func (s *sessionService) ListForMirror(dbc dbctx.Context, mirrorSlug string) ([]*types.UserSession, error) {
	userID, mirror, err := s.requireAccess(dbc, mirrorSlug)
	if err != nil {
		return nil, err
	}

	rows, err := s.sessions.ListByUserMirror(dbc, userID, mirror.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(rows) > 0 {
		return rows, nil
	}
	return s.seedLadder(dbc, userID, mirror)
}

// seedLadder creates the 7 locked slots for a mirror. Slot 1 starts available
// for the first mirror, and for later mirrors only when the previous mirror's
// final session is already completed.
func (s *sessionService) seedLadder(dbc dbctx.Context, userID uuid.UUID, mirror mirrors.Mirror) ([]*types.UserSession, error) {
	firstStatus := types.SessionLocked
	if mirror.Slug == mirrors.First().Slug {
		firstStatus = types.SessionAvailable
	} else {
		for _, m := range mirrors.All() {
			next, ok := mirrors.Next(m.Slug)
			if !ok || next.Slug != mirror.Slug {
				continue
			}
			prev, err := s.sessions.Get(dbc, userID, m.Slug, mirrors.SessionsPerMirror)
			if err != nil {
				return nil, fmt.Errorf("failed to check predecessor mirror: %w", err)
			}
			if prev != nil && prev.Status == types.SessionCompleted {
				firstStatus = types.SessionAvailable
			}
		}
	}

	rows := make([]*types.UserSession, 0, mirrors.SessionsPerMirror)
	for n := 1; n <= mirrors.SessionsPerMirror; n++ {
		status := types.SessionLocked
		if n == 1 {
			status = firstStatus
		}
		rows = append(rows, &types.UserSession{
			ID:            uuid.New(),
			UserID:        userID,
			Mirror:        mirror.Slug,
			SessionNumber: n,
			Status:        status,
		})
	}
	if _, err := s.sessions.Create(dbc, rows); err != nil {
		// Lost a seed race; whatever is stored wins.
		existing, listErr := s.sessions.ListByUserMirror(dbc, userID, mirror.Slug)
		if listErr == nil && len(existing) > 0 {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to seed session ladder: %w", err)
	}
	return rows, nil
}

func (s *sessionService) Start(dbc dbctx.Context, mirrorSlug string, sessionNumber int) (*types.UserSession, error) {
	userID, mirror, err := s.requireAccess(dbc, mirrorSlug)
	if err != nil {
		return nil, err
	}
	if sessionNumber < 1 || sessionNumber > mirrors.SessionsPerMirror {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("session number out of range"))
	}

	session, err := s.sessions.Get(dbc, userID, mirror.Slug, sessionNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil {
		if _, err := s.seedLadder(dbc, userID, mirror); err != nil {
			return nil, err
		}
		session, err = s.sessions.Get(dbc, userID, mirror.Slug, sessionNumber)
		if err != nil || session == nil {
			return nil, fmt.Errorf("failed to fetch seeded session: %w", err)
		}
	}

	if session.Status != types.SessionAvailable && session.Status != types.SessionInProgress {
		return nil, apierr.New(http.StatusConflict, "session_not_available",
			fmt.Errorf("session %d of %s is %s", sessionNumber, mirror.Slug, session.Status))
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"status": types.SessionInProgress}
	if session.StartedAt == nil {
		updates["started_at"] = now
		session.StartedAt = &now
	}
	if err := s.sessions.UpdateFields(dbc, userID, mirror.Slug, sessionNumber, updates); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	session.Status = types.SessionInProgress
	return session, nil
}

func (s *sessionService) Complete(dbc dbctx.Context, in CompleteSessionInput) (*CompleteSessionResult, error) {
	userID, mirror, err := s.requireAccess(dbc, in.Mirror)
	if err != nil {
		return nil, err
	}
	if in.SessionNumber < 1 || in.SessionNumber > mirrors.SessionsPerMirror {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("session number out of range"))
	}

	session, err := s.sessions.Get(dbc, userID, mirror.Slug, in.SessionNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil {
		return nil, apierr.New(http.StatusNotFound, "session_not_found",
			fmt.Errorf("session %d of %s not found", in.SessionNumber, mirror.Slug))
	}

	wasCompleted := session.Status == types.SessionCompleted
	now := time.Now().UTC()

	updates := map[string]interface{}{"status": types.SessionCompleted}
	if session.CompletedAt == nil {
		updates["completed_at"] = now
		session.CompletedAt = &now
	}
	if in.ConversationID != nil && *in.ConversationID != uuid.Nil {
		updates["conversation_id"] = *in.ConversationID
		session.ConversationID = in.ConversationID
	}
	if in.ExitInsight != "" {
		updates["exit_insight"] = in.ExitInsight
		session.ExitInsight = in.ExitInsight
	}
	if err := s.sessions.UpdateFields(dbc, userID, mirror.Slug, in.SessionNumber, updates); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	session.Status = types.SessionCompleted

	result := &CompleteSessionResult{Session: session}
	s.unlockSuccessor(dbc, userID, mirror, in.SessionNumber, result)

	// Repeat completions keep the unlock path (idempotent) but do not double
	// the side effects below.
	if wasCompleted {
		return result, nil
	}

	if in.ExitInsight != "" {
		insight := &types.UserInsight{
			ID:            uuid.New(),
			UserID:        userID,
			Mirror:        mirror.Slug,
			SessionNumber: in.SessionNumber,
			Content:       in.ExitInsight,
		}
		if _, err := s.insights.Create(dbc, []*types.UserInsight{insight}); err != nil {
			s.log.Warn("failed to record exit insight", "user_id", userID, "mirror", mirror.Slug, "error", err)
		}
	}

	if s.streakSvc != nil {
		streak, changed, err := s.streakSvc.Touch(dbc, userID, now)
		if err != nil {
			s.log.Warn("failed to update streak", "user_id", userID, "error", err)
		} else {
			result.Streak = streak
			if changed {
				if s.notify != nil {
					s.notify.StreakUpdated(dbc.Ctx, userID, streak.CurrentStreak, streak.LongestStreak)
				}
				if s.milestoneSvc != nil {
					result.Milestones = append(result.Milestones,
						s.milestoneSvc.OnStreak(dbc, userID, streak.CurrentStreak)...)
				}
			}
		}
	}

	if s.milestoneSvc != nil {
		result.Milestones = append(result.Milestones,
			s.milestoneSvc.OnSessionComplete(dbc, userID, mirror.Slug, in.SessionNumber)...)
	}

	return result, nil
}

// unlockSuccessor opens the next slot: n+1 within the mirror, or slot 1 of the
// next mirror after the 7th. UnlockIfLocked makes concurrent completions safe.
func (s *sessionService) unlockSuccessor(dbc dbctx.Context, userID uuid.UUID, mirror mirrors.Mirror, n int, result *CompleteSessionResult) {
	if n < mirrors.SessionsPerMirror {
		if err := s.sessions.UnlockIfLocked(dbc, userID, mirror.Slug, n+1); err != nil {
			s.log.Warn("failed to unlock next session", "user_id", userID, "mirror", mirror.Slug, "session", n+1, "error", err)
			return
		}
		next := n + 1
		result.NextMirror = mirror.Slug
		result.NextSession = &next
		if s.notify != nil {
			s.notify.SessionUnlocked(dbc.Ctx, userID, mirror.Slug, next)
		}
		return
	}

	nextMirror, ok := mirrors.Next(mirror.Slug)
	if !ok {
		return
	}
	existing, err := s.sessions.ListByUserMirror(dbc, userID, nextMirror.Slug)
	if err != nil {
		s.log.Warn("failed to check next mirror ladder", "user_id", userID, "mirror", nextMirror.Slug, "error", err)
		return
	}
	if len(existing) == 0 {
		if _, err := s.seedLadder(dbc, userID, nextMirror); err != nil {
			s.log.Warn("failed to seed next mirror ladder", "user_id", userID, "mirror", nextMirror.Slug, "error", err)
			return
		}
	}
	if err := s.sessions.UnlockIfLocked(dbc, userID, nextMirror.Slug, 1); err != nil {
		s.log.Warn("failed to unlock next mirror", "user_id", userID, "mirror", nextMirror.Slug, "error", err)
		return
	}
	first := 1
	result.NextMirror = nextMirror.Slug
	result.NextSession = &first
	if s.notify != nil {
		s.notify.SessionUnlocked(dbc.Ctx, userID, nextMirror.Slug, first)
	}
}
