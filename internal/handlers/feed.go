package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JanConnect/JanConnect-sub001/internal/geo"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/util"
)

// RefreshRequest optionally switches mode and updates the filter inputs
type RefreshRequest struct {
	Mode         string   `json:"mode"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Municipality *string  `json:"municipality"`
	RadiusKm     float64  `json:"radius_km"`
}

// GetFeed renders the caller's current feed
// GET /api/v1/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// RefreshFeed reloads the first page, optionally in a new mode
// POST /api/v1/feed/refresh
func (h *Handlers) RefreshFeed(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, "invalid request body")
			return
		}
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		util.RespondBadRequest(c, "lat and lng must be given together")
		return
	}

	mode := s.View().Mode
	if req.Mode != "" {
		parsed, known := models.ParseFilterMode(req.Mode)
		if !known {
			logger.Log.Warn("Unknown filter mode requested, feed will pass through", logger.WithMode(req.Mode))
		}
		mode = parsed
	}

	if req.Lat != nil || req.Municipality != nil || req.RadiusKm > 0 {
		var loc *geo.Point
		if req.Lat != nil {
			loc = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
		}
		municipality := ""
		if req.Municipality != nil {
			municipality = *req.Municipality
		}
		s.SetFilterContext(loc, municipality, req.RadiusKm)
	}

	if err := s.Refresh(c.Request.Context(), mode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// LoadMore appends the next page
// POST /api/v1/feed/more
func (h *Handlers) LoadMore(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.LoadMore(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// GetLeaderboard passes the remote leaderboard through
// GET /api/v1/leaderboard
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	entries, err := s.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetRemoteTopics returns the remote API's topic ranking
// GET /api/v1/trending/remote
func (h *Handlers) GetRemoteTopics(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	topics, err := s.RemoteTopics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}
