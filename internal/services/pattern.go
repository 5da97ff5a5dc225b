package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/patterns"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

type DetectionInput struct {
	UserID         uuid.UUID
	Mirror         string
	ConversationID *uuid.UUID
	MessageID      *uuid.UUID
	Text           string
}

type PatternService interface {
	// RecordDetections scans the text and upserts the per-user ledger: a new
	// pattern type starts at integration level 1 with provenance; a known one
	// increments toward the cap and refreshes last_detected_at.
	RecordDetections(dbc dbctx.Context, in DetectionInput) ([]*types.UserPattern, error)

	ListForUser(dbc dbctx.Context) ([]*types.UserPattern, error)
}

type patternService struct {
	db       *gorm.DB
	log      *logger.Logger
	rows     repos.UserPatternRepo
	detector patterns.Detector
}

func NewPatternService(db *gorm.DB, baseLog *logger.Logger, patternRepo repos.UserPatternRepo, detector patterns.Detector) PatternService {
	return &patternService{
		db:       db,
		log:      baseLog.With("service", "PatternService"),
		rows:     patternRepo,
		detector: detector,
	}
}

func (s *patternService) RecordDetections(dbc dbctx.Context, in DetectionInput) ([]*types.UserPattern, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}

	detected := s.detector.Detect(in.Text)
	if len(detected) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	var out []*types.UserPattern
	for _, pt := range detected {
		row, err := s.upsertOne(dbc, in, string(pt), now)
		if err != nil {
			s.log.Warn("pattern upsert failed", "user_id", in.UserID, "pattern_type", pt, "error", err)
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *patternService) upsertOne(dbc dbctx.Context, in DetectionInput, patternType string, now time.Time) (*types.UserPattern, error) {
	existing, err := s.rows.GetByUserAndType(dbc, in.UserID, patternType)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		row := &types.UserPattern{
			ID:               uuid.New(),
			UserID:           in.UserID,
			PatternType:      patternType,
			IntegrationLevel: 1,
			Mirror:           in.Mirror,
			ConversationID:   in.ConversationID,
			MessageID:        in.MessageID,
			ContextSnippet:   patterns.Snippet(in.Text),
			LastDetectedAt:   now,
		}
		if _, err := s.rows.Create(dbc, []*types.UserPattern{row}); err != nil {
			return nil, err
		}
		return row, nil
	}

	updates := map[string]interface{}{"last_detected_at": now}
	if existing.IntegrationLevel < patterns.MaxIntegrationLevel {
		existing.IntegrationLevel++
		updates["integration_level"] = existing.IntegrationLevel
	}
	if err := s.rows.UpdateFields(dbc, existing.ID, updates); err != nil {
		return nil, err
	}
	existing.LastDetectedAt = now
	return existing, nil
}

func (s *patternService) ListForUser(dbc dbctx.Context) ([]*types.UserPattern, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	return s.rows.ListByUser(dbc, rd.UserID)
}
