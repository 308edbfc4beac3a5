// Package session binds a paginator, an engagement ledger, the remote
// source and the interaction store for a single user.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/engagement"
	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/filter"
	"github.com/JanConnect/JanConnect-sub001/internal/geo"
	"github.com/JanConnect/JanConnect-sub001/internal/interactions"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/metrics"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/source"
)

// Options tunes a new session
type Options struct {
	PageSize int
	Filter   filter.Context
	Clock    func() time.Time
}

// Session is one user's feed
type Session struct {
	UserID string

	remote    source.Source
	paginator *feed.Paginator
	ledger    *engagement.Ledger
}

// New creates a session and loads the user's interaction state from store
func New(ctx context.Context, userID string, remote source.Source, store interactions.Store, opts Options) (*Session, error) {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	p := feed.NewPaginator(remote,
		feed.WithPageSize(opts.PageSize),
		feed.WithClock(clock),
		feed.WithFilterContext(opts.Filter),
	)
	ledger := engagement.NewLedger(p.State(), store, engagement.WithClock(clock))
	if err := ledger.Load(ctx, userID); err != nil {
		return nil, err
	}

	return &Session{
		UserID:    userID,
		remote:    remote,
		paginator: p,
		ledger:    ledger,
	}, nil
}

// View renders the current feed
func (s *Session) View() feed.View {
	return s.paginator.View()
}

// Lookup returns a copy of a loaded post
func (s *Session) Lookup(postID string) (*models.Post, bool) {
	return s.paginator.State().Get(postID)
}

// Refresh reloads the first page for mode
func (s *Session) Refresh(ctx context.Context, mode models.FilterMode) error {
	return s.paginator.Refresh(ctx, mode)
}

// LoadMore appends the next page
func (s *Session) LoadMore(ctx context.Context) error {
	return s.paginator.LoadMore(ctx)
}

// SetFilterContext updates location and municipality used by the filter
func (s *Session) SetFilterContext(userLocation *geo.Point, municipality string, radiusKm float64) {
	s.paginator.SetFilterContext(userLocation, municipality, radiusKm)
}

// Support applies a support locally and forwards it to the remote API
func (s *Session) Support(ctx context.Context, postID string) (*models.Post, error) {
	return s.act(ctx, engagement.ActionSupport, postID, "", func() error {
		return s.remote.SupportPost(ctx, postID)
	})
}

// Escalate applies an escalation locally and forwards it
func (s *Session) Escalate(ctx context.Context, postID, reason string) (*models.Post, error) {
	return s.act(ctx, engagement.ActionEscalate, postID, reason, func() error {
		return s.remote.EscalatePost(ctx, postID, reason)
	})
}

// Amplify applies an amplification locally and forwards it
func (s *Session) Amplify(ctx context.Context, postID string) (*models.Post, error) {
	return s.act(ctx, engagement.ActionAmplify, postID, "", func() error {
		return s.remote.AmplifyPost(ctx, postID)
	})
}

// act runs the local mutation and forwards only the call that took effect.
// A persist failure still counts as applied.
func (s *Session) act(ctx context.Context, action engagement.Action, postID, reason string, remote func() error) (*models.Post, error) {
	post, applied, err := s.ledger.Apply(ctx, engagement.Key{UserID: s.UserID, PostID: postID, Action: action}, reason)
	if err != nil && !errors.Is(err, engagement.ErrPersistFailed) {
		return nil, err
	}
	if applied {
		s.forward(string(action), postID, remote)
	}
	return post, err
}

// AddComment records a comment locally and forwards it
func (s *Session) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	c, err := s.ledger.AddComment(ctx, s.UserID, postID, text)
	if err != nil {
		return nil, err
	}
	s.forward("comment", postID, func() error {
		_, err := s.remote.AddComment(ctx, postID, c.Text)
		return err
	})
	return c, nil
}

// forward pushes a local effect to the remote API. Failures are logged
// and counted; the local effect is never rolled back.
func (s *Session) forward(action, postID string, call func() error) {
	if err := call(); err != nil {
		metrics.Get().RemoteSyncErrors.WithLabelValues(action).Inc()
		logger.Log.Warn("Failed to sync engagement to remote",
			logger.WithUserID(s.UserID),
			logger.WithPostID(postID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// Comments returns comments recorded in this session for postID
func (s *Session) Comments(postID string) []models.Comment {
	return s.ledger.Comments(postID)
}

// HasApplied reports whether the user already performed action on postID
func (s *Session) HasApplied(postID string, action engagement.Action) bool {
	return s.ledger.HasApplied(s.UserID, postID, action)
}

// SavePost bookmarks a loaded post
func (s *Session) SavePost(ctx context.Context, postID string) error {
	return s.ledger.SavePost(ctx, s.UserID, postID)
}

// UnsavePost removes a bookmark
func (s *Session) UnsavePost(ctx context.Context, postID string) error {
	return s.ledger.UnsavePost(ctx, s.UserID, postID)
}

// SavedPosts lists bookmarks
func (s *Session) SavedPosts() []models.Post {
	return s.ledger.SavedPosts(s.UserID)
}

// Reset clears the user's interaction state
func (s *Session) Reset(ctx context.Context) error {
	return s.ledger.Reset(ctx, s.UserID)
}

// Leaderboard is passed through from the remote API
func (s *Session) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.remote.GetLeaderboard(ctx)
}

// RemoteTopics returns the remote API's own topic ranking
func (s *Session) RemoteTopics(ctx context.Context) ([]models.TrendingTopic, error) {
	return s.remote.GetTrendingTopics(ctx)
}
