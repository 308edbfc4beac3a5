package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JanConnect/JanConnect-sub001/internal/session"
)

func (h *Handlers) respondSaved(c *gin.Context, s *session.Session, err error) {
	ok, err := persisted(err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": s.SavedPosts(), "persisted": ok})
}

// SavePost bookmarks a post
// POST /api/v1/posts/:id/save
func (h *Handlers) SavePost(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respondSaved(c, s, s.SavePost(c.Request.Context(), c.Param("id")))
}

// UnsavePost removes a bookmark
// DELETE /api/v1/posts/:id/save
func (h *Handlers) UnsavePost(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respondSaved(c, s, s.UnsavePost(c.Request.Context(), c.Param("id")))
}

// GetSavedPosts lists bookmarks
// GET /api/v1/saved
func (h *Handlers) GetSavedPosts(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": s.SavedPosts()})
}

// ResetInteractions clears the caller's saved posts and action history.
// This is the sign-out path, so the session is released too.
// DELETE /api/v1/interactions
func (h *Handlers) ResetInteractions(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.sessions.Drop(s.UserID)
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
