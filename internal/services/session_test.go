package services

import (
	"errors"
	"testing"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
)

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr, got %v", err)
	}
	return ae.Code
}

func TestSessionLadderSeedsLazily(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	rows, err := env.sessionSvc.ListForMirror(dbc, "soma")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != mirrors.SessionsPerMirror {
		t.Fatalf("expected %d slots, got %d", mirrors.SessionsPerMirror, len(rows))
	}
	for _, s := range rows {
		want := types.SessionLocked
		if s.SessionNumber == 1 {
			want = types.SessionAvailable
		}
		if s.Status != want {
			t.Fatalf("slot %d status = %s, want %s", s.SessionNumber, s.Status, want)
		}
	}
}

func TestSessionStartRequiresUnlockedSlot(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	if _, err := env.sessionSvc.ListForMirror(dbc, "soma"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := env.sessionSvc.Start(dbc, "soma", 3); err == nil {
		t.Fatalf("starting a locked slot should fail")
	} else if apiCode(t, err) != "session_not_available" {
		t.Fatalf("unexpected code: %v", err)
	}

	s, err := env.sessionSvc.Start(dbc, "soma", 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Status != types.SessionInProgress || s.StartedAt == nil {
		t.Fatalf("start result: %+v", s)
	}

	// Starting again while in progress is allowed (resume).
	if _, err := env.sessionSvc.Start(dbc, "soma", 1); err != nil {
		t.Fatalf("resume: %v", err)
	}
}

func TestSessionTierGating(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	if _, err := env.sessionSvc.ListForMirror(dbc, "pulse"); err == nil {
		t.Fatalf("free tier must not reach pulse")
	} else if apiCode(t, err) != "access_denied" {
		t.Fatalf("unexpected code: %v", err)
	}
}

func completeInOrder(t *testing.T, env *testEnv, dbc dbctx.Context, mirror string, from, to int) {
	t.Helper()
	for n := from; n <= to; n++ {
		if _, err := env.sessionSvc.Start(dbc, mirror, n); err != nil {
			t.Fatalf("start %s/%d: %v", mirror, n, err)
		}
		if _, err := env.sessionSvc.Complete(dbc, CompleteSessionInput{Mirror: mirror, SessionNumber: n}); err != nil {
			t.Fatalf("complete %s/%d: %v", mirror, n, err)
		}
	}
}

func TestSessionCompletionChainUnlocksNextMirror(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "voyager")
	dbc := authedCtx(user.ID)

	if _, err := env.sessionSvc.ListForMirror(dbc, "soma"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for n := 1; n <= mirrors.SessionsPerMirror; n++ {
		if _, err := env.sessionSvc.Start(dbc, "soma", n); err != nil {
			t.Fatalf("start %d: %v", n, err)
		}
		res, err := env.sessionSvc.Complete(dbc, CompleteSessionInput{Mirror: "soma", SessionNumber: n})
		if err != nil {
			t.Fatalf("complete %d: %v", n, err)
		}

		if n < mirrors.SessionsPerMirror {
			if res.NextMirror != "soma" || res.NextSession == nil || *res.NextSession != n+1 {
				t.Fatalf("after %d expected next soma/%d, got %s/%v", n, n+1, res.NextMirror, res.NextSession)
			}
		} else {
			if res.NextMirror != "pulse" || res.NextSession == nil || *res.NextSession != 1 {
				t.Fatalf("after final session expected pulse/1, got %s/%v", res.NextMirror, res.NextSession)
			}
		}

		// Monotonic frontier: no slot below a completed one is available or locked.
		rows, _ := env.sessions.ListByUserMirror(dbc, user.ID, "soma")
		maxCompleted := 0
		for _, s := range rows {
			if s.Status == types.SessionCompleted && s.SessionNumber > maxCompleted {
				maxCompleted = s.SessionNumber
			}
		}
		for _, s := range rows {
			if s.SessionNumber <= maxCompleted && s.Status != types.SessionCompleted {
				t.Fatalf("frontier violated at n=%d: slot %d is %s", n, s.SessionNumber, s.Status)
			}
		}
	}

	pulseFirst, err := env.sessions.Get(dbc, user.ID, "pulse", 1)
	if err != nil || pulseFirst == nil {
		t.Fatalf("pulse ladder not seeded: %v", err)
	}
	if pulseFirst.Status != types.SessionAvailable {
		t.Fatalf("pulse session 1 = %s, want available", pulseFirst.Status)
	}
}

func TestSessionCompleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	if _, err := env.sessionSvc.ListForMirror(dbc, "soma"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := env.sessionSvc.Start(dbc, "soma", 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	first, err := env.sessionSvc.Complete(dbc, CompleteSessionInput{Mirror: "soma", SessionNumber: 1, ExitInsight: "I noticed my breath."})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	second, err := env.sessionSvc.Complete(dbc, CompleteSessionInput{Mirror: "soma", SessionNumber: 1, ExitInsight: "I noticed my breath."})
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}

	if first.Session.Status != types.SessionCompleted || second.Session.Status != types.SessionCompleted {
		t.Fatalf("both completions should land on completed")
	}

	insights, _ := env.insights.ListByUser(dbc, user.ID, 0)
	if len(insights) != 1 {
		t.Fatalf("exit insight recorded %d times, want 1", len(insights))
	}

	ums, _ := env.userMilestones.ListByUser(dbc, user.ID)
	seen := map[string]int{}
	for _, um := range ums {
		seen[um.MilestoneKey]++
	}
	for key, count := range seen {
		if count != 1 {
			t.Fatalf("milestone %s unlocked %d times", key, count)
		}
	}

	slot2, _ := env.sessions.Get(dbc, user.ID, "soma", 2)
	if slot2.Status != types.SessionAvailable {
		t.Fatalf("slot 2 = %s, want available", slot2.Status)
	}
}

func TestJourneyRestartGating(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "voyager")
	dbc := authedCtx(user.ID)

	if _, err := env.sessionSvc.ListForMirror(dbc, "soma"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, m := range mirrors.All() {
		to := mirrors.SessionsPerMirror
		if m.Slug == "atlas" {
			to = mirrors.SessionsPerMirror - 1
		}
		completeInOrder(t, env, dbc, m.Slug, 1, to)
	}

	// 27 of 28 completed.
	if err := env.journeySvc.Restart(dbc); err == nil {
		t.Fatalf("restart must fail before full completion")
	} else if apiCode(t, err) != "journey_not_complete" {
		t.Fatalf("unexpected code: %v", err)
	}

	completeInOrder(t, env, dbc, "atlas", mirrors.SessionsPerMirror, mirrors.SessionsPerMirror)

	if err := env.journeySvc.Restart(dbc); err != nil {
		t.Fatalf("restart: %v", err)
	}

	rows, _ := env.sessions.ListByUser(dbc, user.ID)
	if len(rows) != mirrors.CurriculumSessionCount() {
		t.Fatalf("expected %d slots, got %d", mirrors.CurriculumSessionCount(), len(rows))
	}
	availableCount := 0
	for _, s := range rows {
		switch {
		case s.Mirror == "soma" && s.SessionNumber == 1:
			if s.Status != types.SessionAvailable {
				t.Fatalf("soma/1 = %s, want available", s.Status)
			}
			availableCount++
		default:
			if s.Status != types.SessionLocked {
				t.Fatalf("%s/%d = %s, want locked", s.Mirror, s.SessionNumber, s.Status)
			}
		}
		if s.StartedAt != nil || s.CompletedAt != nil || s.ConversationID != nil || s.ExitInsight != "" {
			t.Fatalf("%s/%d retains progress scaffolding after restart", s.Mirror, s.SessionNumber)
		}
	}
	if availableCount != 1 {
		t.Fatalf("exactly one slot should be available, got %d", availableCount)
	}
}

func TestRestartPreservesInsightsAndPatterns(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	if _, err := env.sessionSvc.ListForMirror(dbc, "soma"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for n := 1; n <= mirrors.SessionsPerMirror; n++ {
		if _, err := env.sessionSvc.Start(dbc, "soma", n); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := env.sessionSvc.Complete(dbc, CompleteSessionInput{Mirror: "soma", SessionNumber: n, ExitInsight: "kept"}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	if _, err := env.patternSvc.RecordDetections(dbc, DetectionInput{UserID: user.ID, Mirror: "soma", Text: "beating yourself up"}); err != nil {
		t.Fatalf("detect: %v", err)
	}

	// Free tier curriculum is the single soma ladder.
	if err := env.journeySvc.Restart(dbc); err != nil {
		t.Fatalf("restart: %v", err)
	}

	insights, _ := env.insights.ListByUser(dbc, user.ID, 0)
	if len(insights) != mirrors.SessionsPerMirror {
		t.Fatalf("insights lost on restart: %d", len(insights))
	}
	pats, _ := env.patternRows.ListByUser(dbc, user.ID)
	if len(pats) != 1 {
		t.Fatalf("patterns lost on restart: %d", len(pats))
	}
}
