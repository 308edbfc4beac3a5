package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/trending"
)

var demoBase = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestDemoSource_Deterministic(t *testing.T) {
	a := NewDemoSource(42, 30, demoBase)
	b := NewDemoSource(42, 30, demoBase)

	ctx := context.Background()
	pa, err := a.GetFeed(ctx, models.FilterTrendingToday, 1, 30)
	require.NoError(t, err)
	pb, err := b.GetFeed(ctx, models.FilterTrendingToday, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, pa.Posts, pb.Posts)
}

func TestDemoSource_Paging(t *testing.T) {
	d := NewDemoSource(7, 25, demoBase)
	ctx := context.Background()

	p1, err := d.GetFeed(ctx, models.FilterTrendingToday, 1, 10)
	require.NoError(t, err)
	assert.Len(t, p1.Posts, 10)
	assert.True(t, *p1.HasMore)
	assert.Equal(t, 25, p1.TotalCount)

	p3, err := d.GetFeed(ctx, models.FilterTrendingToday, 3, 10)
	require.NoError(t, err)
	assert.Len(t, p3.Posts, 5)
	assert.False(t, *p3.HasMore)

	p9, err := d.GetFeed(ctx, models.FilterTrendingToday, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, p9.Posts)
	assert.False(t, *p9.HasMore)
}

func TestDemoSource_PostsLookValid(t *testing.T) {
	d := NewDemoSource(1, 0, demoBase)
	assert.Equal(t, DefaultDemoPosts, d.Len())

	page, err := d.GetFeed(context.Background(), models.FilterTrendingToday, 1, DefaultDemoPosts)
	require.NoError(t, err)

	withCoords := 0
	for i, p := range page.Posts {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Hashtags)
		assert.False(t, p.CreatedAt.After(demoBase))
		if p.Location.HasCoordinates() {
			withCoords++
		}
		if i > 0 {
			assert.False(t, p.CreatedAt.After(page.Posts[i-1].CreatedAt), "newest first")
		}
	}
	assert.Less(t, withCoords, len(page.Posts))
	assert.Greater(t, withCoords, 0)
}

func TestDemoSource_Mutations(t *testing.T) {
	d := NewDemoSource(3, 5, demoBase)
	ctx := context.Background()

	page, err := d.GetFeed(ctx, models.FilterTrendingToday, 1, 5)
	require.NoError(t, err)
	target := page.Posts[0]

	require.NoError(t, d.SupportPost(ctx, target.ID))
	require.NoError(t, d.AmplifyPost(ctx, target.ID))
	c, err := d.AddComment(ctx, target.ID, "seen this too")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	page, err = d.GetFeed(ctx, models.FilterTrendingToday, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, target.Stats.Supports+1, page.Posts[0].Stats.Supports)
	assert.Equal(t, target.Stats.Comments+1, page.Posts[0].Stats.Comments)
	assert.Equal(t, 1, page.Posts[0].Amplifications)

	err = d.SupportPost(ctx, "nope")
	assert.True(t, IsNotFound(err))
}

func TestDemoSource_TopicsAndLeaderboard(t *testing.T) {
	d := NewDemoSource(9, 40, demoBase)
	ctx := context.Background()

	topics, err := d.GetTrendingTopics(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, topics)
	assert.LessOrEqual(t, len(topics), trending.MaxTopics)

	board, err := d.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, board)
	for i, e := range board {
		assert.Equal(t, i+1, e.Rank)
		if i > 0 {
			assert.LessOrEqual(t, e.Points, board[i-1].Points)
		}
	}
}

func TestMockSource_RecordsCalls(t *testing.T) {
	m := NewMockSource()
	ctx := context.Background()

	page, err := m.GetFeed(ctx, models.FilterMostEscalated, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)

	m.EscalatePostFunc = func(ctx context.Context, postID, reason string) error {
		return &APIError{StatusCode: 500, Code: "internal_error"}
	}
	assert.True(t, IsServerError(m.EscalatePost(ctx, "p1", "why")))

	assert.Equal(t, 1, m.CallCount("GetFeed"))
	last, ok := m.LastCall("EscalatePost")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"p1", "why"}, last.Args)

	m.Reset()
	assert.Zero(t, m.CallCount("GetFeed"))
}
