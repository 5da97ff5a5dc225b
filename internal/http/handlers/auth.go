package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	user, token, err := ah.authService.Register(dbc, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondServiceError(c, "registration_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"user":         user,
		"access_token": token,
		"expires_in":   int(ah.authService.AccessTTL().Seconds()),
	})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	user, token, err := ah.authService.Login(dbc, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, "login_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"user":         user,
		"access_token": token,
		"expires_in":   int(ah.authService.AccessTTL().Seconds()),
	})
}
