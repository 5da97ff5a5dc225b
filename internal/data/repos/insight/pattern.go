package insight

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type UserPatternRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserPattern) ([]*types.UserPattern, error)
	GetByUserAndType(dbc dbctx.Context, userID uuid.UUID, patternType string) (*types.UserPattern, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserPattern, error)

	// ListTopExcludingMirror feeds the cross-mirror context block: highest
	// integration level first, from mirrors other than the current one.
	ListTopExcludingMirror(dbc dbctx.Context, userID uuid.UUID, mirror string, limit int) ([]*types.UserPattern, error)
}

type userPatternRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPatternRepo(db *gorm.DB, baseLog *logger.Logger) UserPatternRepo {
	return &userPatternRepo{db: db, log: baseLog.With("repo", "UserPatternRepo")}
}

func (r *userPatternRepo) Create(dbc dbctx.Context, rows []*types.UserPattern) ([]*types.UserPattern, error) {
	if len(rows) == 0 {
		return []*types.UserPattern{}, nil
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

func (r *userPatternRepo) GetByUserAndType(dbc dbctx.Context, userID uuid.UUID, patternType string) (*types.UserPattern, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserPattern
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND pattern_type = ?", userID, patternType).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *userPatternRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.UserPattern{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *userPatternRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserPattern, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserPattern
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("integration_level DESC, last_detected_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userPatternRepo) ListTopExcludingMirror(dbc dbctx.Context, userID uuid.UUID, mirror string, limit int) ([]*types.UserPattern, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 {
		limit = 3
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserPattern
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND mirror <> ?", userID, mirror).
		Order("integration_level DESC, last_detected_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
