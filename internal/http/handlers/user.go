package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	user, err := uh.userService.GetMe(dbc)
	if err != nil {
		respondServiceError(c, "get_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /api/me/language
func (uh *UserHandler) UpdateLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := uh.userService.UpdateLanguage(dbc, req.Language); err != nil {
		respondServiceError(c, "update_language_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
