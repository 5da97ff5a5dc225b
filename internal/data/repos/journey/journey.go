package journey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	journeydomain "github.com/mirrorwell/mirrorwell-backend/internal/domain/journey"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type JourneyRepo interface {
	Create(dbc dbctx.Context, rows []*types.Journey) ([]*types.Journey, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Journey, error)
	UpdateFieldsByUserID(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error

	// IncrementConversationCounters atomically bumps the given mirror's counter
	// and the journey total by one.
	IncrementConversationCounters(dbc dbctx.Context, userID uuid.UUID, mirrorSlug string) error
}

type journeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyRepo(db *gorm.DB, baseLog *logger.Logger) JourneyRepo {
	return &journeyRepo{db: db, log: baseLog.With("repo", "JourneyRepo")}
}

func (r *journeyRepo) Create(dbc dbctx.Context, rows []*types.Journey) ([]*types.Journey, error) {
	if len(rows) == 0 {
		return []*types.Journey{}, nil
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

// GetByUserID returns nil when the user has no journey yet; callers default
// the phase through mirrors.DefaultPhase.
func (r *journeyRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Journey, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Journey
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

func (r *journeyRepo) UpdateFieldsByUserID(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Journey{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

func (r *journeyRepo) IncrementConversationCounters(dbc dbctx.Context, userID uuid.UUID, mirrorSlug string) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	column, ok := journeydomain.ConversationCountColumn(mirrorSlug)
	if !ok {
		return fmt.Errorf("unknown mirror %q", mirrorSlug)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Journey{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			column:                gorm.Expr(column + " + 1"),
			"total_conversations": gorm.Expr("total_conversations + 1"),
			"updated_at":          time.Now().UTC(),
		}).Error
}
