// Package engagement applies user actions to posts. Support, escalate and
// amplify take effect at most once per user and post; comments are not
// idempotent. Idempotency state is flushed to an interactions.Store.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/interactions"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/metrics"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/scoring"
)

// CriticalEscalationThreshold is the escalation count above which a post
// is promoted to critical urgency
const CriticalEscalationThreshold = 10

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrEmptyComment  = errors.New("comment text is empty")
	ErrPersistFailed = errors.New("failed to persist interaction state")
	ErrUnknownAction = errors.New("unknown engagement action")
)

// Action is an idempotent engagement kind
type Action string

const (
	ActionSupport  Action = "support"
	ActionEscalate Action = "escalate"
	ActionAmplify  Action = "amplify"
)

// Key identifies one idempotent effect
type Key struct {
	UserID string
	PostID string
	Action Action
}

// PostStore is the ledger's view of the loaded post set
type PostStore interface {
	// Get returns a snapshot of the post
	Get(id string) (*models.Post, bool)
	// Update mutates the stored post in place and returns a snapshot of the result
	Update(id string, fn func(p *models.Post)) (*models.Post, bool)
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the clock used for scores and comment timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger records engagement and applies it to posts
type Ledger struct {
	mu       sync.Mutex
	posts    PostStore
	store    interactions.Store
	now      func() time.Time
	applied  map[Key]bool
	saved    map[string][]models.Post
	comments map[string][]models.Comment

	// serializes store writes so the last Save always carries the newest snapshot
	flushMu sync.Mutex
}

// NewLedger creates a ledger over posts, persisting to store
func NewLedger(posts PostStore, store interactions.Store, opts ...Option) *Ledger {
	l := &Ledger{
		posts:    posts,
		store:    store,
		now:      time.Now,
		applied:  make(map[Key]bool),
		saved:    make(map[string][]models.Post),
		comments: make(map[string][]models.Comment),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load rehydrates userID's idempotency records and saved posts from the store
func (l *Ledger) Load(ctx context.Context, userID string) error {
	state, err := l.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load interaction state: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.forgetLocked(userID)
	for postID, on := range state.UserSupports {
		if on {
			l.applied[Key{userID, postID, ActionSupport}] = true
		}
	}
	for postID, on := range state.UserEscalations {
		if on {
			l.applied[Key{userID, postID, ActionEscalate}] = true
		}
	}
	for postID, on := range state.UserAmplifications {
		if on {
			l.applied[Key{userID, postID, ActionAmplify}] = true
		}
	}
	l.saved[userID] = append([]models.Post(nil), state.SavedPosts...)
	return nil
}

// Support adds one support from userID. Repeats are no-ops.
func (l *Ledger) Support(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, _, err := l.Apply(ctx, Key{userID, postID, ActionSupport}, "")
	return post, err
}

// Escalate adds one escalation from userID. Once escalations exceed the
// critical threshold the post's urgency becomes critical and stays there.
func (l *Ledger) Escalate(ctx context.Context, userID, postID, reason string) (*models.Post, error) {
	post, _, err := l.Apply(ctx, Key{userID, postID, ActionEscalate}, reason)
	return post, err
}

// Amplify credits one amplification from userID, worth a flat score bonus
func (l *Ledger) Amplify(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, _, err := l.Apply(ctx, Key{userID, postID, ActionAmplify}, "")
	return post, err
}

// Apply performs key.Action once per key. applied is true only for the call
// that took effect, so callers can forward exactly one effect per key even
// under concurrent requests. A persist failure still reports applied.
func (l *Ledger) Apply(ctx context.Context, key Key, reason string) (post *models.Post, applied bool, err error) {
	mutate, ok := mutations[key.Action]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownAction, key.Action)
	}
	m := metrics.Get()

	l.mu.Lock()
	current, ok := l.posts.Get(key.PostID)
	if !ok {
		l.mu.Unlock()
		m.EngagementActionsTotal.WithLabelValues(string(key.Action), "not_found").Inc()
		return nil, false, ErrPostNotFound
	}
	if l.applied[key] {
		l.mu.Unlock()
		m.EngagementActionsTotal.WithLabelValues(string(key.Action), "duplicate").Inc()
		return current, false, nil
	}

	now := l.now()
	updated, ok := l.posts.Update(key.PostID, func(p *models.Post) {
		mutate(p)
		p.TrendingScore = scoring.PostScore(p, now)
	})
	if !ok {
		l.mu.Unlock()
		m.EngagementActionsTotal.WithLabelValues(string(key.Action), "not_found").Inc()
		return nil, false, ErrPostNotFound
	}
	l.applied[key] = true
	l.mu.Unlock()

	m.EngagementActionsTotal.WithLabelValues(string(key.Action), "applied").Inc()
	if key.Action == ActionEscalate && reason != "" {
		logger.Log.Debug("Post escalated",
			logger.WithUserID(key.UserID),
			logger.WithPostID(key.PostID),
			zap.String("reason", reason),
		)
	}
	return updated, true, l.flush(ctx, key.UserID)
}

var mutations = map[Action]func(p *models.Post){
	ActionSupport: func(p *models.Post) {
		p.Stats.Supports++
	},
	ActionEscalate: func(p *models.Post) {
		p.Stats.Escalations++
		if p.Stats.Escalations > CriticalEscalationThreshold {
			p.Urgency = models.UrgencyCritical
		}
	},
	ActionAmplify: func(p *models.Post) {
		p.Amplifications++
	},
}

// AddComment records a comment from userID and bumps the post's comment count
func (l *Ledger) AddComment(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	m := metrics.Get()
	text = strings.TrimSpace(text)
	if text == "" {
		m.EngagementActionsTotal.WithLabelValues("comment", "invalid").Inc()
		return nil, ErrEmptyComment
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if _, ok := l.posts.Update(postID, func(p *models.Post) {
		p.Stats.Comments++
		p.TrendingScore = scoring.PostScore(p, now)
	}); !ok {
		m.EngagementActionsTotal.WithLabelValues("comment", "not_found").Inc()
		return nil, ErrPostNotFound
	}

	c := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
	}
	l.comments[postID] = append(l.comments[postID], c)
	m.EngagementActionsTotal.WithLabelValues("comment", "applied").Inc()
	return &c, nil
}

// Comments returns the comments recorded for postID, oldest first
func (l *Ledger) Comments(postID string) []models.Comment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Comment{}, l.comments[postID]...)
}

// HasApplied reports whether userID already performed action on postID
func (l *Ledger) HasApplied(userID, postID string, action Action) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applied[Key{userID, postID, action}]
}

// SavePost bookmarks a loaded post for userID. Saving twice is a no-op.
func (l *Ledger) SavePost(ctx context.Context, userID, postID string) error {
	l.mu.Lock()
	post, ok := l.posts.Get(postID)
	if !ok {
		l.mu.Unlock()
		return ErrPostNotFound
	}
	for _, p := range l.saved[userID] {
		if p.ID == postID {
			l.mu.Unlock()
			return nil
		}
	}
	l.saved[userID] = append(l.saved[userID], *post)
	l.mu.Unlock()

	return l.flush(ctx, userID)
}

// UnsavePost removes a bookmark. The idempotency records are untouched.
func (l *Ledger) UnsavePost(ctx context.Context, userID, postID string) error {
	l.mu.Lock()
	saved := l.saved[userID]
	idx := -1
	for i, p := range saved {
		if p.ID == postID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return nil
	}
	l.saved[userID] = append(saved[:idx:idx], saved[idx+1:]...)
	l.mu.Unlock()

	return l.flush(ctx, userID)
}

// SavedPosts returns userID's bookmarks in the order they were saved
func (l *Ledger) SavedPosts(userID string) []models.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Post, 0, len(l.saved[userID]))
	for _, p := range l.saved[userID] {
		out = append(out, *p.Clone())
	}
	return out
}

// Reset forgets everything recorded for userID and clears the store.
// Post counters already applied are not rolled back.
func (l *Ledger) Reset(ctx context.Context, userID string) error {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.mu.Lock()
	l.forgetLocked(userID)
	l.mu.Unlock()

	if err := l.store.Reset(ctx, userID); err != nil {
		logger.Log.Warn("Failed to reset interaction state", logger.WithUserID(userID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

func (l *Ledger) forgetLocked(userID string) {
	for k := range l.applied {
		if k.UserID == userID {
			delete(l.applied, k)
		}
	}
	delete(l.saved, userID)
}

// snapshotLocked builds the persisted form of userID's state
func (l *Ledger) snapshotLocked(userID string) *interactions.State {
	state := interactions.NewState()
	for k := range l.applied {
		if k.UserID != userID {
			continue
		}
		switch k.Action {
		case ActionSupport:
			state.UserSupports[k.PostID] = true
		case ActionEscalate:
			state.UserEscalations[k.PostID] = true
		case ActionAmplify:
			state.UserAmplifications[k.PostID] = true
		}
	}
	for _, p := range l.saved[userID] {
		state.SavedPosts = append(state.SavedPosts, *p.Clone())
	}
	return state
}

// flush writes userID's state. A failure keeps the in-memory effect.
func (l *Ledger) flush(ctx context.Context, userID string) error {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.mu.Lock()
	state := l.snapshotLocked(userID)
	l.mu.Unlock()

	if err := l.store.Save(ctx, userID, state); err != nil {
		logger.Log.Warn("Failed to persist interaction state", logger.WithUserID(userID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}
