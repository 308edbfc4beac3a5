package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/telemetry"
)

// UserAgent is sent on every request
const UserAgent = "JanConnect-civicfeed/0.1.0"

// RESTOptions configures the remote client
type RESTOptions struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

// RESTClient talks to the remote feed API over HTTP
type RESTClient struct {
	http *resty.Client
}

// NewRESTClient builds a client for opts.BaseURL
func NewRESTClient(opts RESTOptions) *RESTClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := resty.New()
	c.SetTransport(telemetry.NewHTTPTransport(nil))
	c.SetBaseURL(opts.BaseURL)
	c.SetTimeout(opts.Timeout)
	c.SetHeader("User-Agent", UserAgent)
	c.SetHeader("Accept", "application/json")
	c.SetJSONMarshaler(json.Marshal)
	c.SetJSONUnmarshaler(json.Unmarshal)
	if opts.Token != "" {
		c.SetAuthToken(opts.Token)
	}

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Log.Debug("HTTP request", zap.String("method", req.Method), zap.String("url", req.URL))
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Log.Debug("HTTP response",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()),
		)
		return nil
	})

	return &RESTClient{http: c}
}

var _ Source = (*RESTClient)(nil)

// GetFeed fetches one page of the feed for mode
func (r *RESTClient) GetFeed(ctx context.Context, mode models.FilterMode, page, pageSize int) (*FeedPage, error) {
	var result FeedPage
	resp, err := r.http.R().
		SetContext(ctx).
		SetPathParam("mode", string(mode)).
		SetQueryParams(map[string]string{
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(pageSize),
		}).
		SetResult(&result).
		Get("/api/v1/feed/{mode}")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	return &result, nil
}

// SupportPost registers a support for postID
func (r *RESTClient) SupportPost(ctx context.Context, postID string) error {
	return r.postAction(ctx, postID, "support", nil)
}

// EscalatePost escalates postID with an optional reason
func (r *RESTClient) EscalatePost(ctx context.Context, postID, reason string) error {
	var body interface{}
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	return r.postAction(ctx, postID, "escalate", body)
}

// AmplifyPost amplifies postID
func (r *RESTClient) AmplifyPost(ctx context.Context, postID string) error {
	return r.postAction(ctx, postID, "amplify", nil)
}

// AddComment creates a comment and returns the server's copy
func (r *RESTClient) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	var response struct {
		Comment models.Comment `json:"comment"`
	}
	resp, err := r.http.R().
		SetContext(ctx).
		SetPathParam("id", postID).
		SetBody(map[string]string{"text": text}).
		SetResult(&response).
		Post("/api/v1/posts/{id}/comments")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &response.Comment, nil
}

// GetTrendingTopics returns the server-side topic ranking
func (r *RESTClient) GetTrendingTopics(ctx context.Context) ([]models.TrendingTopic, error) {
	var response struct {
		Topics []models.TrendingTopic `json:"topics"`
	}
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&response).
		Get("/api/v1/trending/topics")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch trending topics: %w", err)
	}
	return response.Topics, nil
}

// GetLeaderboard returns the civic leaderboard
func (r *RESTClient) GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var response struct {
		Entries []models.LeaderboardEntry `json:"entries"`
	}
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&response).
		Get("/api/v1/leaderboard")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return response.Entries, nil
}

func (r *RESTClient) postAction(ctx context.Context, postID, action string, body interface{}) error {
	req := r.http.R().
		SetContext(ctx).
		SetPathParam("id", postID)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post("/api/v1/posts/{id}/" + action)
	if err := checkResponse(resp, err); err != nil {
		return fmt.Errorf("failed to %s post: %w", action, err)
	}
	return nil
}
