package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type PatternHandler struct {
	patterns services.PatternService
	contexts services.ContextService
}

func NewPatternHandler(patterns services.PatternService, contexts services.ContextService) *PatternHandler {
	return &PatternHandler{patterns: patterns, contexts: contexts}
}

// GET /api/patterns
func (h *PatternHandler) ListForUser(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.patterns.ListForUser(dbc)
	if err != nil {
		respondServiceError(c, "list_patterns_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"patterns": rows})
}

// GET /api/insights?limit=50
func (h *PatternHandler) ListInsights(c *gin.Context) {
	limit := 50
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.contexts.ListInsights(dbc, limit)
	if err != nil {
		respondServiceError(c, "list_insights_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"insights": rows})
}
