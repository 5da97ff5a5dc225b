package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type MilestoneHandler struct {
	milestones services.MilestoneService
}

func NewMilestoneHandler(milestones services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones}
}

// GET /api/milestones
func (h *MilestoneHandler) ListForUser(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.milestones.ListForUser(dbc)
	if err != nil {
		respondServiceError(c, "list_milestones_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"milestones": rows})
}

// POST /api/milestones/:key/seen
func (h *MilestoneHandler) MarkSeen(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("milestone key required"))
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.milestones.MarkSeen(dbc, key); err != nil {
		respondServiceError(c, "mark_seen_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
