package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/session"
	"github.com/JanConnect/JanConnect-sub001/internal/util"
)

// EscalateRequest carries an optional escalation reason
type EscalateRequest struct {
	Reason string `json:"reason"`
}

// CommentRequest is the body of a new comment
type CommentRequest struct {
	Text string `json:"text"`
}

type postAction func(s *session.Session, c *gin.Context) (*models.Post, error)

func (h *Handlers) handleAction(c *gin.Context, action postAction) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	post, err := action(s, c)
	saved, err := persisted(err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "persisted": saved})
}

// SupportPost supports a post once per user
// POST /api/v1/posts/:id/support
func (h *Handlers) SupportPost(c *gin.Context) {
	h.handleAction(c, func(s *session.Session, c *gin.Context) (*models.Post, error) {
		return s.Support(c.Request.Context(), c.Param("id"))
	})
}

// EscalatePost escalates a post once per user
// POST /api/v1/posts/:id/escalate
func (h *Handlers) EscalatePost(c *gin.Context) {
	var req EscalateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, "invalid request body")
			return
		}
	}
	h.handleAction(c, func(s *session.Session, c *gin.Context) (*models.Post, error) {
		return s.Escalate(c.Request.Context(), c.Param("id"), req.Reason)
	})
}

// AmplifyPost amplifies a post once per user
// POST /api/v1/posts/:id/amplify
func (h *Handlers) AmplifyPost(c *gin.Context) {
	h.handleAction(c, func(s *session.Session, c *gin.Context) (*models.Post, error) {
		return s.Amplify(c.Request.Context(), c.Param("id"))
	})
}

// AddComment adds a comment to a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	comment, err := s.AddComment(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComments lists comments recorded for a post
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": s.Comments(c.Param("id"))})
}
