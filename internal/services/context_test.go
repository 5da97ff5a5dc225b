package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
)

func TestCrossMirrorContextEmptyWithoutHistory(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "voyager")
	dbc := authedCtx(user.ID)

	block, err := env.contextSvc.BuildCrossMirrorContext(dbc, user.ID, "soma")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if block != "" {
		t.Fatalf("expected empty block, got %q", block)
	}
}

func TestCrossMirrorContextExcludesCurrentMirror(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "voyager")
	dbc := authedCtx(user.ID)

	seed := []*types.UserPattern{
		{ID: uuid.New(), UserID: user.ID, PatternType: "avoidance", IntegrationLevel: 2, Mirror: "soma"},
		{ID: uuid.New(), UserID: user.ID, PatternType: "rumination", IntegrationLevel: 4, Mirror: "pulse"},
	}
	if _, err := env.patternRows.Create(dbctx.Context{}, seed); err != nil {
		t.Fatalf("seed patterns: %v", err)
	}
	if _, err := env.insights.Create(dbctx.Context{}, []*types.UserInsight{
		{ID: uuid.New(), UserID: user.ID, Mirror: "soma", SessionNumber: 2, Content: "I hold tension in my jaw."},
		{ID: uuid.New(), UserID: user.ID, Mirror: "pulse", SessionNumber: 1, Content: "Anger arrives before sadness."},
	}); err != nil {
		t.Fatalf("seed insights: %v", err)
	}

	block, err := env.contextSvc.BuildCrossMirrorContext(dbc, user.ID, "pulse")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(block, "avoidance") {
		t.Fatalf("block should include soma pattern: %q", block)
	}
	if strings.Contains(block, "rumination") || strings.Contains(block, "Anger arrives") {
		t.Fatalf("block must exclude the current mirror's rows: %q", block)
	}
	if !strings.Contains(block, "jaw") {
		t.Fatalf("block should include soma insight: %q", block)
	}
	if !strings.Contains(block, "Don't force connections") {
		t.Fatalf("block missing usage instruction: %q", block)
	}
}

func TestCrossMirrorContextOrdersPatternsByIntegration(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "voyager")
	dbc := authedCtx(user.ID)

	now := time.Now().UTC()
	seed := []*types.UserPattern{
		{ID: uuid.New(), UserID: user.ID, PatternType: "avoidance", IntegrationLevel: 1, Mirror: "soma", LastDetectedAt: now},
		{ID: uuid.New(), UserID: user.ID, PatternType: "perfectionism", IntegrationLevel: 5, Mirror: "pulse", LastDetectedAt: now},
		{ID: uuid.New(), UserID: user.ID, PatternType: "rumination", IntegrationLevel: 3, Mirror: "soma", LastDetectedAt: now},
	}
	if _, err := env.patternRows.Create(dbctx.Context{}, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	block, err := env.contextSvc.BuildCrossMirrorContext(dbc, user.ID, "atlas")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	first := strings.Index(block, "perfectionism")
	second := strings.Index(block, "rumination")
	third := strings.Index(block, "avoidance")
	if first == -1 || second == -1 || third == -1 || !(first < second && second < third) {
		t.Fatalf("patterns not ordered by integration level: %q", block)
	}
}
