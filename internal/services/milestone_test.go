package services

import (
	"encoding/json"
	"testing"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
)

func TestMilestoneUnlockIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	if _, err := env.journeySvc.EnsureJourney(dbc, user.ID); err != nil {
		t.Fatalf("ensure journey: %v", err)
	}

	m, created, err := env.milestoneSvc.Unlock(dbc, user.ID, types.TriggerTotalConversations, "1")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if m == nil || m.Key != "first_conversation" || !created {
		t.Fatalf("expected fresh first_conversation unlock, got m=%+v created=%v", m, created)
	}

	m, created, err = env.milestoneSvc.Unlock(dbc, user.ID, types.TriggerTotalConversations, "1")
	if err != nil {
		t.Fatalf("repeat unlock: %v", err)
	}
	if m == nil || created {
		t.Fatalf("repeat unlock should be a no-op, got created=%v", created)
	}

	ums, _ := env.userMilestones.ListByUser(dbc, user.ID)
	if len(ums) != 1 {
		t.Fatalf("expected one user milestone row, got %d", len(ums))
	}
}

func TestMilestoneUnlockAppendsToJourney(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	if _, err := env.journeySvc.EnsureJourney(dbc, user.ID); err != nil {
		t.Fatalf("ensure journey: %v", err)
	}
	if _, _, err := env.milestoneSvc.Unlock(dbc, user.ID, types.TriggerStreak, "7"); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	j, err := env.journeys.GetByUserID(dbc, user.ID)
	if err != nil || j == nil {
		t.Fatalf("journey: %v", err)
	}
	var keys []string
	if err := json.Unmarshal(j.MilestonesUnlocked, &keys); err != nil {
		t.Fatalf("decode milestones_unlocked: %v", err)
	}
	if len(keys) != 1 || keys[0] != "streak_7" {
		t.Fatalf("milestones_unlocked = %v", keys)
	}
}

func TestMilestoneUnknownTriggerIsNoop(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "free")
	dbc := authedCtx(user.ID)

	m, created, err := env.milestoneSvc.Unlock(dbc, user.ID, types.TriggerTotalConversations, "3")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if m != nil || created {
		t.Fatalf("no catalog row matches total=3; got m=%+v created=%v", m, created)
	}
}

func TestMilestoneSessionCompleteTriggersPhaseMilestone(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "voyager")
	dbc := authedCtx(user.ID)

	if _, err := env.journeySvc.EnsureJourney(dbc, user.ID); err != nil {
		t.Fatalf("ensure journey: %v", err)
	}

	unlocked := env.milestoneSvc.OnSessionComplete(dbc, user.ID, "soma", 7)
	keys := map[string]bool{}
	for _, m := range unlocked {
		keys[m.Key] = true
	}
	if !keys["session_soma_7"] || !keys["phase_foundation_complete"] {
		t.Fatalf("expected session and phase milestones, got %v", keys)
	}
}
