// Package source is the boundary to the remote community feed API.
package source

import (
	"context"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

// FeedPage is one page of the remote feed. HasMore and TotalCount are
// optional; a nil HasMore and zero TotalCount mean the server gave no hint.
type FeedPage struct {
	Posts      []*models.Post `json:"posts"`
	HasMore    *bool          `json:"has_more,omitempty"`
	TotalCount int            `json:"total_count,omitempty"`
}

// Source is everything the feed core needs from the remote side
type Source interface {
	GetFeed(ctx context.Context, mode models.FilterMode, page, pageSize int) (*FeedPage, error)
	SupportPost(ctx context.Context, postID string) error
	EscalatePost(ctx context.Context, postID, reason string) error
	AmplifyPost(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, text string) (*models.Comment, error)
	GetTrendingTopics(ctx context.Context) ([]models.TrendingTopic, error)
	GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// Bool is a convenience for building a FeedPage with an explicit HasMore
func Bool(v bool) *bool { return &v }
