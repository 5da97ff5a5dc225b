package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirrorwell/mirrorwell-backend/internal/http/response"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
)

// respondServiceError maps a service error onto the wire. Typed errors carry
// their own status and code; anything else is a 500 with the fallback code.
func respondServiceError(c *gin.Context, fallbackCode string, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		response.RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	response.RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}
