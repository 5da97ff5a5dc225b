package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/dbctx"
	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/services"
)

// BillingHandler receives tier-change notifications from the payment
// provider. It sits outside the user-auth group; the provider authenticates
// with a shared secret header instead of a bearer token.
type BillingHandler struct {
	log          *logger.Logger
	users        services.UserService
	sharedSecret string
}

func NewBillingHandler(log *logger.Logger, users services.UserService, sharedSecret string) *BillingHandler {
	return &BillingHandler{
		log:          log.With("handler", "BillingHandler"),
		users:        users,
		sharedSecret: sharedSecret,
	}
}

type tierChangeReq struct {
	UserID uuid.UUID `json:"user_id"`
	Tier   string    `json:"tier"`
}

// POST /api/billing/tier-change
func (h *BillingHandler) TierChange(c *gin.Context) {
	given := c.GetHeader("X-Webhook-Secret")
	if h.sharedSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.sharedSecret)) != 1 {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid webhook secret"))
		return
	}

	var req tierChangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.UserID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("user_id required"))
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	user, err := h.users.ApplyTierChange(dbc, req.UserID, req.Tier)
	if err != nil {
		respondServiceError(c, "tier_change_failed", err)
		return
	}
	h.log.Info("applied tier change", "user_id", req.UserID, "tier", user.SubscriptionTier)
	response.RespondOK(c, gin.H{"user_id": user.ID, "tier": user.SubscriptionTier})
}
