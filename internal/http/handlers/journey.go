package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type JourneyHandler struct {
	journeys services.JourneyService
}

func NewJourneyHandler(journeys services.JourneyService) *JourneyHandler {
	return &JourneyHandler{journeys: journeys}
}

// GET /api/journey
func (h *JourneyHandler) Dashboard(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	dashboard, err := h.journeys.Dashboard(dbc)
	if err != nil {
		respondServiceError(c, "journey_dashboard_failed", err)
		return
	}
	response.RespondOK(c, dashboard)
}

// POST /api/journey/restart
func (h *JourneyHandler) Restart(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.journeys.Restart(dbc); err != nil {
		respondServiceError(c, "journey_restart_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
