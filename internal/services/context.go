package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

const (
	crossContextPatternLimit = 3
	crossContextInsightLimit = 5
)

// ContextService assembles the cross-mirror context block injected ahead of a
// mirror's persona prompt.
type ContextService interface {
	// BuildCrossMirrorContext returns an empty string when the user has no
	// patterns or insights outside the current mirror.
	BuildCrossMirrorContext(dbc dbctx.Context, userID uuid.UUID, currentMirror string) (string, error)

	ListInsights(dbc dbctx.Context, limit int) ([]*types.UserInsight, error)
}

type contextService struct {
	db       *gorm.DB
	log      *logger.Logger
	patterns repos.UserPatternRepo
	insights repos.UserInsightRepo
}

func NewContextService(db *gorm.DB, baseLog *logger.Logger, patternRepo repos.UserPatternRepo, insightRepo repos.UserInsightRepo) ContextService {
	return &contextService{
		db:       db,
		log:      baseLog.With("service", "ContextService"),
		patterns: patternRepo,
		insights: insightRepo,
	}
}

func (s *contextService) BuildCrossMirrorContext(dbc dbctx.Context, userID uuid.UUID, currentMirror string) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("missing user_id")
	}

	var (
		topPatterns    []*types.UserPattern
		recentInsights []*types.UserInsight
	)

	// The two reads are independent; run them off the request transaction so
	// they can go in parallel.
	readCtx := dbctx.Context{Ctx: dbc.Ctx}
	g, _ := errgroup.WithContext(dbc.Ctx)
	g.Go(func() error {
		rows, err := s.patterns.ListTopExcludingMirror(readCtx, userID, currentMirror, crossContextPatternLimit)
		if err != nil {
			return fmt.Errorf("failed to load cross-mirror patterns: %w", err)
		}
		topPatterns = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.insights.ListRecentExcludingMirror(readCtx, userID, currentMirror, crossContextInsightLimit)
		if err != nil {
			return fmt.Errorf("failed to load cross-mirror insights: %w", err)
		}
		recentInsights = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(topPatterns) == 0 && len(recentInsights) == 0 {
		return "", nil
	}
	return renderCrossMirrorContext(topPatterns, recentInsights), nil
}

func (s *contextService) ListInsights(dbc dbctx.Context, limit int) ([]*types.UserInsight, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	return s.insights.ListByUser(dbc, rd.UserID, limit)
}

func renderCrossMirrorContext(pats []*types.UserPattern, ins []*types.UserInsight) string {
	var b strings.Builder
	b.WriteString("--- CONTEXT FROM OTHER MIRRORS ---\n")

	if len(pats) > 0 {
		b.WriteString("Patterns this person has been exploring:\n")
		for _, p := range pats {
			fmt.Fprintf(&b, "- %s (integration level %d, first noticed with %s)\n",
				strings.ReplaceAll(p.PatternType, "_", " "), p.IntegrationLevel, mirrorName(p.Mirror))
		}
	}

	if len(ins) > 0 {
		b.WriteString("Recent insights from other mirrors:\n")
		for _, i := range ins {
			fmt.Fprintf(&b, "- [%s, session %d] %s\n", mirrorName(i.Mirror), i.SessionNumber, i.Content)
		}
	}

	b.WriteString("Reference this naturally if it is relevant to what the person shares. Don't force connections.\n")
	b.WriteString("--- END CONTEXT ---")
	return b.String()
}

func mirrorName(slug string) string {
	if m, ok := mirrors.BySlug(slug); ok {
		return m.Name
	}
	return slug
}
