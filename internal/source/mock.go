package source

import (
	"context"
	"sync"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockSource is a Source for tests. Set the Func fields to customise a
// method; unset methods succeed with empty results. Every call is recorded.
type MockSource struct {
	mu sync.Mutex

	Calls []MockCall

	GetFeedFunc           func(ctx context.Context, mode models.FilterMode, page, pageSize int) (*FeedPage, error)
	SupportPostFunc       func(ctx context.Context, postID string) error
	EscalatePostFunc      func(ctx context.Context, postID, reason string) error
	AmplifyPostFunc       func(ctx context.Context, postID string) error
	AddCommentFunc        func(ctx context.Context, postID, text string) (*models.Comment, error)
	GetTrendingTopicsFunc func(ctx context.Context) ([]models.TrendingTopic, error)
	GetLeaderboardFunc    func(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// NewMockSource creates a mock with no overrides
func NewMockSource() *MockSource {
	return &MockSource{}
}

var _ Source = (*MockSource)(nil)

func (m *MockSource) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times method was called
func (m *MockSource) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call to method
func (m *MockSource) LastCall(method string) (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == method {
			return m.Calls[i], true
		}
	}
	return MockCall{}, false
}

// Reset clears recorded calls
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func (m *MockSource) GetFeed(ctx context.Context, mode models.FilterMode, page, pageSize int) (*FeedPage, error) {
	m.record("GetFeed", mode, page, pageSize)
	if m.GetFeedFunc != nil {
		return m.GetFeedFunc(ctx, mode, page, pageSize)
	}
	return &FeedPage{Posts: []*models.Post{}}, nil
}

func (m *MockSource) SupportPost(ctx context.Context, postID string) error {
	m.record("SupportPost", postID)
	if m.SupportPostFunc != nil {
		return m.SupportPostFunc(ctx, postID)
	}
	return nil
}

func (m *MockSource) EscalatePost(ctx context.Context, postID, reason string) error {
	m.record("EscalatePost", postID, reason)
	if m.EscalatePostFunc != nil {
		return m.EscalatePostFunc(ctx, postID, reason)
	}
	return nil
}

func (m *MockSource) AmplifyPost(ctx context.Context, postID string) error {
	m.record("AmplifyPost", postID)
	if m.AmplifyPostFunc != nil {
		return m.AmplifyPostFunc(ctx, postID)
	}
	return nil
}

func (m *MockSource) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	m.record("AddComment", postID, text)
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, postID, text)
	}
	return &models.Comment{PostID: postID, Text: text}, nil
}

func (m *MockSource) GetTrendingTopics(ctx context.Context) ([]models.TrendingTopic, error) {
	m.record("GetTrendingTopics")
	if m.GetTrendingTopicsFunc != nil {
		return m.GetTrendingTopicsFunc(ctx)
	}
	return []models.TrendingTopic{}, nil
}

func (m *MockSource) GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	m.record("GetLeaderboard")
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc(ctx)
	}
	return []models.LeaderboardEntry{}, nil
}
