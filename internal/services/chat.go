package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mirrorwell/mirrorwell-backend/internal/data/repos"
	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/openai"
	"github.com/mirrorwell/mirrorwell-backend/internal/requestdata"
)

// historyLimit caps the completion history at the most recent messages. A hard
// cap, not a sliding summary: long conversations silently lose earlier turns
// from the model's view but not from storage.
const historyLimit = 50

const titleLimit = 80

type TurnInput struct {
	Mirror         string
	ConversationID *uuid.UUID
	Message        string
	SessionNumber  *int
}

type TurnEvent struct {
	Type           string    `json:"type"` // "text" | "done" | "error"
	Text           string    `json:"text,omitempty"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Error          string    `json:"error,omitempty"`
}

type TurnResult struct {
	ConversationID uuid.UUID
	AssistantText  string
	Patterns       []*types.UserPattern
	Milestones     []*types.Milestone
}

type ChatService interface {
	// StreamTurn runs one chat turn end to end: gate checks, conversation
	// resolution, prompt assembly, the streamed completion, and the
	// post-stream bookkeeping. Incremental text reaches the caller through
	// emit, tagged with the conversation id so a newly created id is known
	// from the first chunk.
	StreamTurn(dbc dbctx.Context, in TurnInput, emit func(TurnEvent)) (*TurnResult, error)

	ListConversations(dbc dbctx.Context, limit int) ([]*types.Conversation, error)
	GetConversation(dbc dbctx.Context, conversationID uuid.UUID) (*types.Conversation, []*types.ChatMessage, error)
}

type chatService struct {
	db            *gorm.DB
	log           *logger.Logger
	users         repos.UserRepo
	conversations repos.ConversationRepo
	messages      repos.ChatMessageRepo
	journeySvc    JourneyService
	contextSvc    ContextService
	patternSvc    PatternService
	ai            openai.Client
}

func NewChatService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	conversationRepo repos.ConversationRepo,
	messageRepo repos.ChatMessageRepo,
	journeyService JourneyService,
	contextService ContextService,
	patternService PatternService,
	aiClient openai.Client,
) ChatService {
	return &chatService{
		db:            db,
		log:           baseLog.With("service", "ChatService"),
		users:         userRepo,
		conversations: conversationRepo,
		messages:      messageRepo,
		journeySvc:    journeyService,
		contextSvc:    contextService,
		patternSvc:    patternService,
		ai:            aiClient,
	}
}

func (s *chatService) StreamTurn(dbc dbctx.Context, in TurnInput, emit func(TurnEvent)) (*TurnResult, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	in.Message = strings.TrimSpace(in.Message)
	if in.Message == "" || in.Mirror == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("message and mirror required"))
	}
	mirror, ok := mirrors.BySlug(in.Mirror)
	if !ok {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("unknown mirror %q", in.Mirror))
	}
	if emit == nil {
		emit = func(TurnEvent) {}
	}

	users, err := s.users.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil || len(users) == 0 {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	user := users[0]
	tier := mirrors.NormalizeTier(user.SubscriptionTier)

	// Access is independent of quota: a blocked mirror stays blocked even
	// with quota to spare.
	if !mirrors.CanAccessMirror(tier, mirror.Slug) {
		return nil, apierr.New(http.StatusForbidden, "access_denied",
			fmt.Errorf("tier %s does not include mirror %s", tier, mirror.Slug))
	}

	now := time.Now().UTC()
	if limitN, limited := mirrors.MonthlyLimit(tier); limited {
		// Month rollover resets the counter before the quota check.
		if !sameMonth(user.LastResetDate, now) {
			if err := s.users.ResetMonthlyCount(dbc, user.ID, now); err != nil {
				return nil, fmt.Errorf("failed to reset monthly counter: %w", err)
			}
			user.MonthlyMessageCount = 0
			user.LastResetDate = now
		}
		if user.MonthlyMessageCount >= limitN {
			return nil, apierr.New(http.StatusTooManyRequests, "quota_exceeded",
				fmt.Errorf("monthly message limit of %d reached; resets %s", limitN, nextMonthStart(now).Format("2006-01-02")))
		}
	}

	conv, err := s.resolveConversation(dbc, user, mirror, in.ConversationID)
	if err != nil {
		return nil, err
	}

	userMsg := &types.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		UserID:         user.ID,
		Role:           types.RoleUser,
		Content:        in.Message,
		Metadata:       datatypes.JSON([]byte(`{}`)),
	}
	if _, err := s.messages.Create(dbc, []*types.ChatMessage{userMsg}); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	systemPrompt := mirror.SystemPrompt
	if mirrors.HasCrossMirrorContext(tier) && s.contextSvc != nil {
		block, err := s.contextSvc.BuildCrossMirrorContext(dbc, user.ID, mirror.Slug)
		if err != nil {
			s.log.Warn("cross-mirror context unavailable", "user_id", user.ID, "error", err)
		} else if block != "" {
			systemPrompt = block + "\n\n" + systemPrompt
		}
	}

	history, err := s.loadHistory(dbc, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	full, streamErr := s.ai.StreamCompletion(dbc.Ctx, systemPrompt, history, func(delta string) {
		emit(TurnEvent{Type: "text", Text: delta, ConversationID: conv.ID})
	})

	// Post-stream persistence must survive client disconnects: the generated
	// text is already paid for.
	bg := dbctx.Context{Ctx: context.WithoutCancel(dbc.Ctx), Tx: dbc.Tx}

	if streamErr != nil {
		s.log.Error("completion stream failed", "user_id", user.ID, "conversation_id", conv.ID, "error", streamErr)
		if full != "" {
			s.persistAssistantMessage(bg, conv, user.ID, full, in.Message, true)
		}
		emit(TurnEvent{Type: "error", ConversationID: conv.ID, Error: "stream failed"})
		return nil, apierr.New(http.StatusBadGateway, "stream_error", streamErr)
	}

	result := &TurnResult{ConversationID: conv.ID, AssistantText: full}

	// Each post-stream step is isolated: the response already reached the
	// user, so a bookkeeping failure is logged and skipped, never surfaced.
	assistantMsg := s.persistAssistantMessage(bg, conv, user.ID, full, in.Message, false)

	if s.patternSvc != nil {
		var msgID *uuid.UUID
		if assistantMsg != nil {
			msgID = &assistantMsg.ID
		}
		detected, err := s.patternSvc.RecordDetections(bg, DetectionInput{
			UserID:         user.ID,
			Mirror:         mirror.Slug,
			ConversationID: &conv.ID,
			MessageID:      msgID,
			Text:           full,
		})
		if err != nil {
			s.log.Warn("pattern detection failed", "user_id", user.ID, "error", err)
		} else {
			result.Patterns = detected
		}
	}

	if s.journeySvc != nil {
		if _, unlocked, err := s.journeySvc.RecordConversationActivity(bg, user.ID, mirror.Slug); err != nil {
			s.log.Warn("journey counter update failed", "user_id", user.ID, "error", err)
		} else {
			result.Milestones = unlocked
		}
	}

	if _, limited := mirrors.MonthlyLimit(tier); limited {
		if err := s.users.IncrementMonthlyMessageCount(bg, user.ID); err != nil {
			s.log.Warn("quota increment failed", "user_id", user.ID, "error", err)
		}
	}

	emit(TurnEvent{Type: "done", ConversationID: conv.ID})
	return result, nil
}

func (s *chatService) resolveConversation(dbc dbctx.Context, user *types.User, mirror mirrors.Mirror, conversationID *uuid.UUID) (*types.Conversation, error) {
	if conversationID != nil && *conversationID != uuid.Nil {
		rows, err := s.conversations.GetByIDs(dbc, []uuid.UUID{*conversationID})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch conversation: %w", err)
		}
		if len(rows) == 0 || rows[0].UserID != user.ID {
			return nil, apierr.New(http.StatusNotFound, "conversation_not_found", fmt.Errorf("conversation not found"))
		}
		if rows[0].Mirror != mirror.Slug {
			return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("conversation belongs to a different mirror"))
		}
		return rows[0], nil
	}

	phase := string(mirrors.DefaultPhase())
	if s.journeySvc != nil {
		if j, err := s.journeySvc.EnsureJourney(dbc, user.ID); err == nil && j != nil {
			phase = j.CurrentPhase
		}
	}

	conv := &types.Conversation{
		ID:                     uuid.New(),
		UserID:                 user.ID,
		Mirror:                 mirror.Slug,
		Language:               user.LanguagePreference,
		JourneyPhaseAtCreation: phase,
	}
	if _, err := s.conversations.Create(dbc, []*types.Conversation{conv}); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *chatService) loadHistory(dbc dbctx.Context, conversationID uuid.UUID) ([]openai.Message, error) {
	rows, err := s.messages.ListRecent(dbc, conversationID, historyLimit)
	if err != nil {
		return nil, err
	}
	out := make([]openai.Message, 0, len(rows))
	for _, m := range rows {
		out = append(out, openai.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func (s *chatService) persistAssistantMessage(dbc dbctx.Context, conv *types.Conversation, userID uuid.UUID, content, userMessage string, partial bool) *types.ChatMessage {
	meta := `{}`
	if partial {
		meta = `{"partial": true}`
	}
	msg := &types.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		UserID:         userID,
		Role:           types.RoleAssistant,
		Content:        content,
		Metadata:       datatypes.JSON([]byte(meta)),
	}
	if _, err := s.messages.Create(dbc, []*types.ChatMessage{msg}); err != nil {
		s.log.Error("failed to persist assistant message", "conversation_id", conv.ID, "partial", partial, "error", err)
		msg = nil
	}

	updates := map[string]interface{}{
		"message_count": gorm.Expr("message_count + ?", 2),
		"updated_at":    time.Now().UTC(),
	}
	if conv.Title == "" {
		updates["title"] = deriveTitle(userMessage)
	}
	if err := s.conversations.UpdateFields(dbc, conv.ID, updates); err != nil {
		s.log.Warn("failed to update conversation counters", "conversation_id", conv.ID, "error", err)
	}
	return msg
}

func deriveTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "…"
}

func (s *chatService) ListConversations(dbc dbctx.Context, limit int) ([]*types.Conversation, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	return s.conversations.ListByUser(dbc, rd.UserID, limit)
}

func (s *chatService) GetConversation(dbc dbctx.Context, conversationID uuid.UUID) (*types.Conversation, []*types.ChatMessage, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
	}
	rows, err := s.conversations.GetByIDs(dbc, []uuid.UUID{conversationID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	if len(rows) == 0 || rows[0].UserID != rd.UserID {
		return nil, nil, apierr.New(http.StatusNotFound, "conversation_not_found", fmt.Errorf("conversation not found"))
	}
	msgs, err := s.messages.ListByConversation(dbc, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return rows[0], msgs, nil
}

func sameMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

func nextMonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
