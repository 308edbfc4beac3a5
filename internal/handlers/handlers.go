// Package handlers exposes feed sessions over HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/auth"
	"github.com/JanConnect/JanConnect-sub001/internal/engagement"
	apierrors "github.com/JanConnect/JanConnect-sub001/internal/errors"
	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/session"
	"github.com/JanConnect/JanConnect-sub001/internal/util"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	sessions *session.Manager
	auth     *auth.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(sessions *session.Manager, authService *auth.Service) *Handlers {
	return &Handlers{sessions: sessions, auth: authService}
}

// session resolves the caller's session, responding with an error if it can't
func (h *Handlers) session(c *gin.Context) (*session.Session, bool) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return nil, false
	}
	s, err := h.sessions.Get(c.Request.Context(), userID)
	if err != nil {
		logger.Log.Error("Failed to open session", logger.WithUserID(userID), zap.Error(err))
		util.RespondWithAPIError(c, apierrors.StorageError("failed to load interaction state"))
		return nil, false
	}
	return s, true
}

// respondError maps domain errors to API errors. Anything unrecognised is
// treated as a remote failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engagement.ErrPostNotFound):
		util.RespondWithAPIError(c, apierrors.NotFound("post"))
	case errors.Is(err, engagement.ErrEmptyComment):
		util.RespondWithAPIError(c, apierrors.ValidationError("text", "comment text is required"))
	case errors.Is(err, feed.ErrBusy),
		errors.Is(err, feed.ErrNoMore),
		errors.Is(err, feed.ErrNeedsRefresh),
		errors.Is(err, feed.ErrSuperseded):
		util.RespondWithAPIError(c, apierrors.Conflict(err.Error()))
	case errors.Is(err, engagement.ErrPersistFailed):
		util.RespondWithAPIError(c, apierrors.StorageError("failed to persist interaction state"))
	default:
		util.RespondWithAPIError(c, apierrors.BadGateway("remote feed request failed").WithDetails(err.Error()))
	}
}

// persisted splits an optimistic result: a persist failure is reported
// in the body rather than as an HTTP error because the effect applied.
func persisted(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, engagement.ErrPersistFailed) {
		return false, nil
	}
	return false, err
}

// Health reports liveness and whether the interaction store is reachable
func (h *Handlers) Health(c *gin.Context) {
	if err := h.sessions.Ping(c.Request.Context()); err != nil {
		logger.Log.Warn("Interaction store health check failed", zap.Error(err))
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("interaction store"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}
