package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

type turnReq struct {
	Mirror         string     `json:"mirror"`
	ConversationID *uuid.UUID `json:"conversation_id"`
	Message        string     `json:"message"`
	SessionNumber  *int       `json:"session_number"`
}

// POST /api/chat/turn
//
// The response is a server-sent event stream: "text" events carry response
// deltas, then exactly one terminal "done" or "error" event. Gate failures
// (quota, access, validation) surface as a plain JSON error before any
// stream bytes are written.
func (h *ChatHandler) Turn(c *gin.Context) {
	var req turnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "stream_unsupported", fmt.Errorf("streaming unsupported"))
		return
	}

	started := false
	emit := func(ev services.TurnEvent) {
		if !started {
			started = true
			c.Writer.Header().Set("Content-Type", "text/event-stream")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.Header().Set("Connection", "keep-alive")
			c.Writer.Header().Set("X-Accel-Buffering", "no")
			c.Writer.WriteHeader(http.StatusOK)
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			h.log.Warn("failed to marshal turn event", "error", err)
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, payload)
		flusher.Flush()
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if _, err := h.chat.StreamTurn(dbc, services.TurnInput{
		Mirror:         req.Mirror,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		SessionNumber:  req.SessionNumber,
	}, emit); err != nil {
		// Once streaming began the terminal "error" event already went out.
		if !started {
			respondServiceError(c, "turn_failed", err)
		}
		return
	}
}

// GET /api/chat/conversations?limit=50
func (h *ChatHandler) ListConversations(c *gin.Context) {
	limit := 50
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	conversations, err := h.chat.ListConversations(dbc, limit)
	if err != nil {
		respondServiceError(c, "list_conversations_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": conversations})
}

// GET /api/chat/conversations/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	conversation, messages, err := h.chat.GetConversation(dbc, conversationID)
	if err != nil {
		respondServiceError(c, "conversation_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conversation, "messages": messages})
}
