package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/scoring"
	"github.com/JanConnect/JanConnect-sub001/internal/trending"
)

// DefaultDemoPosts is how many posts a DemoSource generates when not told otherwise
const DefaultDemoPosts = 60

var (
	demoWards = []string{
		"Indiranagar, Bengaluru",
		"Koramangala, Bengaluru",
		"Jayanagar, Bengaluru",
		"Whitefield, Bengaluru",
		"Malleshwaram, Bengaluru",
		"Hebbal, Bengaluru",
	}
	demoTags = []string{
		"pothole", "garbage", "streetlight", "water", "drainage",
		"traffic", "parks", "noise", "footpath", "stray_dogs",
		"powercut", "encroachment",
	}
	demoIssues = []string{
		"Huge pothole near the bus stop",
		"Garbage not collected for a week",
		"Streetlight broken on the main road",
		"No water supply since morning",
		"Open drain overflowing after rain",
		"Signal not working at junction",
		"Park benches broken and unsafe",
		"Footpath blocked by construction debris",
	}
	demoStatuses = []models.Status{
		models.StatusReported,
		models.StatusVerified,
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusResolved,
	}

	// rough centre of the demo city
	demoCenterLat = 12.9716
	demoCenterLng = 77.5946
)

// DemoSource serves a generated, deterministic feed for local runs.
// Mutations are applied to its in-memory posts so the demo behaves
// like a live server.
type DemoSource struct {
	mu       sync.Mutex
	posts    []*models.Post
	comments map[string][]models.Comment
	now      func() time.Time
}

// NewDemoSource generates count posts from seed. The same seed and base
// time always produce the same feed.
func NewDemoSource(seed uint64, count int, base time.Time) *DemoSource {
	if count <= 0 {
		count = DefaultDemoPosts
	}
	f := gofakeit.New(seed)

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		posts = append(posts, fakePost(f, i, base))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return &DemoSource{
		posts:    posts,
		comments: make(map[string][]models.Comment),
		now:      time.Now,
	}
}

func fakePost(f *gofakeit.Faker, i int, base time.Time) *models.Post {
	tagCount := f.IntRange(1, 3)
	tags := make([]string, 0, tagCount)
	for len(tags) < tagCount {
		tag := f.RandomString(demoTags)
		if !containsString(tags, tag) {
			tags = append(tags, tag)
		}
	}

	loc := models.Location{Name: f.RandomString(demoWards)}
	// every fifth report carries a place name only
	if i%5 != 4 {
		lat := demoCenterLat + f.Float64Range(-0.15, 0.15)
		lng := demoCenterLng + f.Float64Range(-0.15, 0.15)
		loc.Lat = &lat
		loc.Lng = &lng
	}

	escalations := f.IntRange(0, 14)
	urgency := models.UrgencyLow
	switch {
	case escalations > 10:
		urgency = models.UrgencyCritical
	case escalations > 4:
		urgency = models.UrgencyModerate
	}

	hoursAgo := f.IntRange(0, 96)
	return &models.Post{
		ID:        fmt.Sprintf("demo-%03d", i+1),
		UserID:    fmt.Sprintf("citizen-%02d", f.IntRange(1, 20)),
		Author:    f.Name(),
		Location:  loc,
		CreatedAt: base.Add(-time.Duration(hoursAgo)*time.Hour - time.Duration(f.IntRange(0, 59))*time.Minute),
		Caption:   fmt.Sprintf("%s in %s", f.RandomString(demoIssues), loc.Name),
		Hashtags:  tags,
		Status:    demoStatuses[f.IntRange(0, len(demoStatuses)-1)],
		Urgency:   urgency,
		Stats: models.Stats{
			Views:       f.IntRange(0, 400),
			Supports:    f.IntRange(0, 60),
			Comments:    f.IntRange(0, 25),
			Shares:      f.IntRange(0, 15),
			Escalations: escalations,
		},
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var _ Source = (*DemoSource)(nil)

// Len returns the number of generated posts
func (d *DemoSource) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.posts)
}

// GetFeed pages through the generated posts, newest first. Ordering by
// mode is left to the local filter.
func (d *DemoSource) GetFeed(ctx context.Context, mode models.FilterMode, page, pageSize int) (*FeedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	total := len(d.posts)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	out := make([]*models.Post, 0, end-start)
	for _, p := range d.posts[start:end] {
		out = append(out, p.Clone())
	}
	return &FeedPage{
		Posts:      out,
		HasMore:    Bool(end < total),
		TotalCount: total,
	}, nil
}

func (d *DemoSource) find(postID string) (*models.Post, error) {
	for _, p := range d.posts {
		if p.ID == postID {
			return p, nil
		}
	}
	return nil, &APIError{Code: "not_found", Message: "post not found", StatusCode: 404}
}

func (d *DemoSource) SupportPost(ctx context.Context, postID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.find(postID)
	if err != nil {
		return err
	}
	p.Stats.Supports++
	return nil
}

func (d *DemoSource) EscalatePost(ctx context.Context, postID, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.find(postID)
	if err != nil {
		return err
	}
	p.Stats.Escalations++
	if p.Stats.Escalations > 10 {
		p.Urgency = models.UrgencyCritical
	}
	return nil
}

func (d *DemoSource) AmplifyPost(ctx context.Context, postID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.find(postID)
	if err != nil {
		return err
	}
	p.Amplifications++
	return nil
}

func (d *DemoSource) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.find(postID)
	if err != nil {
		return nil, err
	}
	p.Stats.Comments++
	c := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    "demo",
		Text:      text,
		CreatedAt: d.now(),
	}
	d.comments[postID] = append(d.comments[postID], c)
	return &c, nil
}

// GetTrendingTopics ranks hashtags over the whole generated set
func (d *DemoSource) GetTrendingTopics(ctx context.Context) ([]models.TrendingTopic, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	posts := make([]*models.Post, 0, len(d.posts))
	for _, p := range d.posts {
		posts = append(posts, p.Clone())
	}
	scoring.Refresh(posts, d.now())
	return trending.Aggregate(posts), nil
}

// GetLeaderboard ranks authors by the undecayed engagement their reports earned
func (d *DemoSource) GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byUser := make(map[string]*models.LeaderboardEntry)
	order := []string{}
	for _, p := range d.posts {
		e, ok := byUser[p.UserID]
		if !ok {
			e = &models.LeaderboardEntry{UserID: p.UserID, Name: p.Author}
			byUser[p.UserID] = e
			order = append(order, p.UserID)
		}
		e.Points += scoring.Base(p.Stats)
	}

	entries := make([]models.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, *byUser[id])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
