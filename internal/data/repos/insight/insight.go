package insight

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type UserInsightRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserInsight) ([]*types.UserInsight, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserInsight, error)

	// ListRecentExcludingMirror feeds the cross-mirror context block: most
	// recent first, from mirrors other than the current one.
	ListRecentExcludingMirror(dbc dbctx.Context, userID uuid.UUID, mirror string, limit int) ([]*types.UserInsight, error)
}

type userInsightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserInsightRepo(db *gorm.DB, baseLog *logger.Logger) UserInsightRepo {
	return &userInsightRepo{db: db, log: baseLog.With("repo", "UserInsightRepo")}
}

func (r *userInsightRepo) Create(dbc dbctx.Context, rows []*types.UserInsight) ([]*types.UserInsight, error) {
	if len(rows) == 0 {
		return []*types.UserInsight{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userInsightRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserInsight, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserInsight
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userInsightRepo) ListRecentExcludingMirror(dbc dbctx.Context, userID uuid.UUID, mirror string, limit int) ([]*types.UserInsight, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 {
		limit = 5
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserInsight
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND mirror <> ?", userID, mirror).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
