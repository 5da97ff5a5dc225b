package journey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type StreakRepo interface {
	Create(dbc dbctx.Context, rows []*types.Streak) ([]*types.Streak, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Streak, error)
	UpdateFieldsByUserID(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
}

type streakRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return &streakRepo{db: db, log: baseLog.With("repo", "StreakRepo")}
}

func (r *streakRepo) Create(dbc dbctx.Context, rows []*types.Streak) ([]*types.Streak, error) {
	if len(rows) == 0 {
		return []*types.Streak{}, nil
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

func (r *streakRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Streak, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Streak
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *streakRepo) UpdateFieldsByUserID(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
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
		Model(&types.Streak{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
