package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/JanConnect/JanConnect-sub001/internal/errors"
	"github.com/JanConnect/JanConnect-sub001/internal/util"
)

// DevTokenRequest names the user to mint a token for
type DevTokenRequest struct {
	UserID string `json:"user_id"`
}

// DevToken mints a session token without credentials. Only routed in development.
// POST /api/v1/auth/dev-token
func (h *Handlers) DevToken(c *gin.Context) {
	var req DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		util.RespondWithAPIError(c, apierrors.ValidationError("user_id", "user_id is required"))
		return
	}
	token, expiresAt, err := h.auth.IssueToken(req.UserID)
	if err != nil {
		util.RespondWithAPIError(c, apierrors.InternalError("failed to issue token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expiresAt})
}
