package chat

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

type ChatMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error)

	// ListRecent returns the newest `limit` messages of a conversation in
	// oldest-first order, ready for use as completion history.
	ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.ChatMessage, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.ChatMessage, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: baseLog.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error) {
	if len(rows) == 0 {
		return []*types.ChatMessage{}, nil
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

func (r *chatMessageRepo) ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if limit <= 0 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var newestFirst []*types.ChatMessage
	if err := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&newestFirst).Error; err != nil {
		return nil, err
	}
	out := make([]*types.ChatMessage, len(newestFirst))
	for i, m := range newestFirst {
		out[len(newestFirst)-1-i] = m
	}
	return out, nil
}

func (r *chatMessageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.ChatMessage, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatMessage
	if err := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
