package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

func init() {
	color.NoColor = true
}

var outNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func sampleView() feed.View {
	return feed.View{
		Mode:    models.FilterMostEscalated,
		Status:  feed.StatusIdle,
		Page:    1,
		Loaded:  1,
		HasMore: true,
		Posts: []*models.Post{{
			ID:            "p1",
			Caption:       "Streetlight out for two weeks on 4th Cross",
			Hashtags:      []string{"streetlight"},
			Location:      models.Location{Name: "Malleshwaram"},
			CreatedAt:     outNow.Add(-3 * time.Hour),
			Urgency:       models.UrgencyCritical,
			Status:        models.StatusVerified,
			TrendingScore: 42,
			Stats:         models.Stats{Supports: 7, Escalations: 11},
		}},
		Topics: []models.TrendingTopic{{Hashtag: "streetlight", PostCount: 1, AggregateScore: 42}},
	}
}

func newPrinter(f Format) (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	p := New(f, &buf)
	p.Now = func() time.Time { return outNow }
	return p, &buf
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFeedText(t *testing.T) {
	p, buf := newPrinter(FormatText)
	require.NoError(t, p.Feed(sampleView()))

	out := buf.String()
	assert.Contains(t, out, "Most escalated feed")
	assert.Contains(t, out, "more available")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "critical")
	assert.Contains(t, out, "3h ago")
	assert.Contains(t, out, "#streetlight")
	assert.Contains(t, out, "Trending topics")
}

func TestFeedJSON(t *testing.T) {
	p, buf := newPrinter(FormatJSON)
	require.NoError(t, p.Feed(sampleView()))

	var decoded feed.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, models.FilterMostEscalated, decoded.Mode)
	require.Len(t, decoded.Posts, 1)
	assert.Equal(t, 42, decoded.Posts[0].TrendingScore)
}

func TestFeedTable(t *testing.T) {
	p, buf := newPrinter(FormatTable)
	require.NoError(t, p.Feed(sampleView()))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "SCORE")
	assert.Contains(t, string(lines[1]), "42")
}

func TestLeaderboardFallsBackToUserID(t *testing.T) {
	p, buf := newPrinter(FormatText)
	require.NoError(t, p.Leaderboard([]models.LeaderboardEntry{{UserID: "u7", Points: 10, Rank: 1}}))
	assert.Contains(t, buf.String(), "u7")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "just now", humanizeAge(10*time.Second))
	assert.Equal(t, "5m ago", humanizeAge(5*time.Minute))
	assert.Equal(t, "2d ago", humanizeAge(50*time.Hour))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
