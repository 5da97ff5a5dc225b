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

type UserSessionRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserSession) ([]*types.UserSession, error)
	Get(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int) (*types.UserSession, error)
	ListByUserMirror(dbc dbctx.Context, userID uuid.UUID, mirror string) ([]*types.UserSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserSession, error)
	CountByUserStatus(dbc dbctx.Context, userID uuid.UUID, status string) (int64, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int, updates map[string]interface{}) error

	// UnlockIfLocked flips a locked slot to available. Already-available,
	// in-progress, or completed slots are left alone, which makes concurrent
	// "unlock next" races harmless.
	UnlockIfLocked(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int) error

	// ResetAllToLocked returns every slot to locked and clears the progress
	// scaffolding (timestamps, conversation refs, exit insights).
	ResetAllToLocked(dbc dbctx.Context, userID uuid.UUID) error
}

type userSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
	return &userSessionRepo{db: db, log: baseLog.With("repo", "UserSessionRepo")}
}

func (r *userSessionRepo) Create(dbc dbctx.Context, rows []*types.UserSession) ([]*types.UserSession, error) {
	if len(rows) == 0 {
		return []*types.UserSession{}, nil
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

func (r *userSessionRepo) Get(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int) (*types.UserSession, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserSession
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND mirror = ? AND session_number = ?", userID, mirror, sessionNumber).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *userSessionRepo) ListByUserMirror(dbc dbctx.Context, userID uuid.UUID, mirror string) ([]*types.UserSession, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserSession
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND mirror = ?", userID, mirror).
		Order("session_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserSession, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserSession
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("mirror ASC, session_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userSessionRepo) CountByUserStatus(dbc dbctx.Context, userID uuid.UUID, status string) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.UserSession{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userSessionRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int, updates map[string]interface{}) error {
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
		Model(&types.UserSession{}).
		Where("user_id = ? AND mirror = ? AND session_number = ?", userID, mirror, sessionNumber).
		Updates(updates).Error
}

func (r *userSessionRepo) UnlockIfLocked(dbc dbctx.Context, userID uuid.UUID, mirror string, sessionNumber int) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.UserSession{}).
		Where("user_id = ? AND mirror = ? AND session_number = ? AND status = ?",
			userID, mirror, sessionNumber, types.SessionLocked).
		Updates(map[string]interface{}{
			"status":     types.SessionAvailable,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *userSessionRepo) ResetAllToLocked(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.UserSession{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":          types.SessionLocked,
			"started_at":      nil,
			"completed_at":    nil,
			"conversation_id": nil,
			"exit_insight":    "",
			"updated_at":      time.Now().UTC(),
		}).Error
}
