package journey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type MilestoneRepo interface {
	// UpsertCatalog seeds catalog rows, ignoring keys that already exist.
	UpsertCatalog(dbc dbctx.Context, rows []*types.Milestone) error
	GetByTrigger(dbc dbctx.Context, triggerType, triggerValue string) (*types.Milestone, error)
	GetByKeys(dbc dbctx.Context, keys []string) ([]*types.Milestone, error)
}

type UserMilestoneRepo interface {
	// Unlock inserts the (user, milestone) row if absent. Returns true only
	// when this call created the row, so duplicate triggers are no-ops.
	Unlock(dbc dbctx.Context, userID uuid.UUID, milestoneKey string) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserMilestone, error)
	ListUnseenByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserMilestone, error)
	MarkSeen(dbc dbctx.Context, userID uuid.UUID, milestoneKey string) error
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (r *milestoneRepo) UpsertCatalog(dbc dbctx.Context, rows []*types.Milestone) error {
	if len(rows) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *milestoneRepo) GetByTrigger(dbc dbctx.Context, triggerType, triggerValue string) (*types.Milestone, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Milestone
	if err := txx.WithContext(dbc.Ctx).
		Where("trigger_type = ? AND trigger_value = ?", triggerType, triggerValue).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *milestoneRepo) GetByKeys(dbc dbctx.Context, keys []string) ([]*types.Milestone, error) {
	if len(keys) == 0 {
		return []*types.Milestone{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Milestone
	if err := txx.WithContext(dbc.Ctx).
		Where("key IN ?", keys).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type userMilestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) UserMilestoneRepo {
	return &userMilestoneRepo{db: db, log: baseLog.With("repo", "UserMilestoneRepo")}
}

func (r *userMilestoneRepo) Unlock(dbc dbctx.Context, userID uuid.UUID, milestoneKey string) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("missing user_id")
	}
	if milestoneKey == "" {
		return false, fmt.Errorf("missing milestone key")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.UserMilestone{
		ID:           uuid.New(),
		UserID:       userID,
		MilestoneKey: milestoneKey,
		UnlockedAt:   time.Now().UTC(),
	}
	res := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "milestone_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userMilestoneRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserMilestone, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserMilestone
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userMilestoneRepo) ListUnseenByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserMilestone, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserMilestone
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND seen = ?", userID, false).
		Order("unlocked_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userMilestoneRepo) MarkSeen(dbc dbctx.Context, userID uuid.UUID, milestoneKey string) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.UserMilestone{}).
		Where("user_id = ? AND milestone_key = ?", userID, milestoneKey).
		Updates(map[string]interface{}{
			"seen":       true,
			"updated_at": time.Now().UTC(),
		}).Error
}
