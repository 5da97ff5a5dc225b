package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GET /api/mirrors/:mirror/sessions
func (h *SessionHandler) ListForMirror(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.sessions.ListForMirror(dbc, c.Param("mirror"))
	if err != nil {
		respondServiceError(c, "list_sessions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": rows})
}

type startSessionReq struct {
	Mirror        string `json:"mirror"`
	SessionNumber int    `json:"session_number"`
}

// POST /api/sessions/start
func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	session, err := h.sessions.Start(dbc, req.Mirror, req.SessionNumber)
	if err != nil {
		respondServiceError(c, "start_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

type completeSessionReq struct {
	Mirror         string     `json:"mirror"`
	SessionNumber  int        `json:"session_number"`
	ConversationID *uuid.UUID `json:"conversation_id"`
	ExitInsight    string     `json:"exit_insight"`
}

// POST /api/sessions/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	var req completeSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	result, err := h.sessions.Complete(dbc, services.CompleteSessionInput{
		Mirror:         req.Mirror,
		SessionNumber:  req.SessionNumber,
		ConversationID: req.ConversationID,
		ExitInsight:    req.ExitInsight,
	})
	if err != nil {
		respondServiceError(c, "complete_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"session":      result.Session,
		"next_mirror":  result.NextMirror,
		"next_session": result.NextSession,
		"streak":       result.Streak,
		"milestones":   result.Milestones,
	})
}
