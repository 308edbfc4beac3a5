package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/trending"
)

func init() {
	color.NoColor = true
}

// sandbox points config, state and logs at a temporary home
func sandbox(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CIVICFEED_STORE_DRIVER", "file")
	t.Setenv("CIVICFEED_STORE_DIR", filepath.Join(home, "state"))
	t.Setenv("CIVICFEED_LOG_FILE", filepath.Join(home, "civicfeed.log"))
	t.Setenv("CIVICFEED_USER_ID", "tester")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "civicfeed dev")
}

func TestFeedJSON(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "feed", "most_escalated", "--pages", "2")
	require.NoError(t, err)

	var v feed.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, models.FilterMostEscalated, v.Mode)
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, 40, v.Loaded)
	assert.True(t, v.HasMore)
	for i := 1; i < len(v.Posts); i++ {
		assert.GreaterOrEqual(t, v.Posts[i-1].Stats.Escalations, v.Posts[i].Stats.Escalations)
	}
}

func TestFeedStopsAtLastPage(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "feed", "--pages", "10")
	require.NoError(t, err)

	var v feed.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, 60, v.Loaded)
	assert.False(t, v.HasMore)
}

func TestFeedUnknownModeWarns(t *testing.T) {
	sandbox(t)
	out, stderr, err := run(t, "--demo", "-o", "json", "feed", "loudest")
	require.NoError(t, err)
	assert.Contains(t, stderr, "unknown mode")

	var v feed.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, 20, v.Loaded)
	assert.Equal(t, models.FilterMode("loudest"), v.Mode)
	assert.Len(t, v.Posts, 20)
}

func TestFeedNearMe(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "feed", "near_me", "--near", "12.9716,77.5946", "--radius", "5", "--pages", "3")
	require.NoError(t, err)

	var v feed.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Less(t, v.Loaded, 60)
	for _, p := range v.Posts {
		assert.True(t, p.Location.HasCoordinates())
	}
}

func TestFeedRejectsBadLocation(t *testing.T) {
	sandbox(t)
	_, _, err := run(t, "--demo", "feed", "near_me", "--near", "north")
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "topics", "--pages", "3")
	require.NoError(t, err)

	var topics []models.TrendingTopic
	require.NoError(t, json.Unmarshal([]byte(out), &topics))
	assert.NotEmpty(t, topics)
	assert.LessOrEqual(t, len(topics), trending.MaxTopics)
}

func TestSupportIsRememberedAcrossRuns(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "support", "demo-001")
	require.NoError(t, err)
	assert.Contains(t, out, "Supported demo-001")

	out, _, err = run(t, "--demo", "support", "demo-001")
	require.NoError(t, err)
	assert.Contains(t, out, "Already supported demo-001")

	// another user starts fresh
	out, _, err = run(t, "--demo", "--user", "someone-else", "support", "demo-001")
	require.NoError(t, err)
	assert.Contains(t, out, "Supported demo-001")
}

func TestAmplifyJSON(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "amplify", "demo-030")
	require.NoError(t, err)

	var p models.Post
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "demo-030", p.ID)
	assert.Equal(t, 1, p.Amplifications)
}

func TestEscalateWithReason(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "escalate", "demo-002", "--reason", "open manhole near school")
	require.NoError(t, err)
	assert.Contains(t, out, "Escalated demo-002")
}

func TestActionOnUnknownPost(t *testing.T) {
	sandbox(t)
	_, _, err := run(t, "--demo", "support", "missing-post")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestComment(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "comment", "demo-003", "still", "broken")
	require.NoError(t, err)

	var c models.Comment
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "demo-003", c.PostID)
	assert.Equal(t, "still broken", c.Text)
	assert.Equal(t, "tester", c.UserID)
}

func TestSavedLifecycle(t *testing.T) {
	sandbox(t)
	_, _, err := run(t, "--demo", "saved", "add", "demo-004")
	require.NoError(t, err)

	out, _, err := run(t, "--demo", "-o", "json", "saved", "list")
	require.NoError(t, err)
	var saved []models.Post
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "demo-004", saved[0].ID)

	_, _, err = run(t, "--demo", "saved", "rm", "demo-004")
	require.NoError(t, err)

	out, _, err = run(t, "--demo", "-o", "json", "saved")
	require.NoError(t, err)
	saved = nil
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Empty(t, saved)
}

func TestResetRequiresConfirmation(t *testing.T) {
	sandbox(t)
	_, _, err := run(t, "--demo", "support", "demo-005")
	require.NoError(t, err)

	_, _, err = run(t, "--demo", "reset")
	require.Error(t, err)

	out, _, err := run(t, "--demo", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Interactions reset for tester")

	out, _, err = run(t, "--demo", "support", "demo-005")
	require.NoError(t, err)
	assert.Contains(t, out, "Supported demo-005")
}

func TestLeaderboard(t *testing.T) {
	sandbox(t)
	out, _, err := run(t, "--demo", "-o", "json", "leaderboard")
	require.NoError(t, err)

	var entries []models.LeaderboardEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestBadOutputFormat(t *testing.T) {
	sandbox(t)
	_, _, err := run(t, "--demo", "-o", "xml", "feed")
	assert.Error(t, err)
}
