package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanConnect/JanConnect-sub001/internal/geo"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func at(lat, lng float64) models.Location {
	return models.Location{Name: "somewhere", Lat: &lat, Lng: &lng}
}

func ids(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestTrendingTodayOrdersByScoreThenRecency(t *testing.T) {
	posts := []*models.Post{
		{ID: "low", CreatedAt: now.Add(-time.Hour), Stats: models.Stats{Views: 1}},
		{ID: "high", CreatedAt: now.Add(-time.Hour), Stats: models.Stats{Supports: 50}},
		{ID: "tie-old", CreatedAt: now.Add(-2 * time.Hour), Stats: models.Stats{}},
		{ID: "tie-new", CreatedAt: now.Add(-30 * time.Minute), Stats: models.Stats{}},
	}

	got := Apply(posts, models.FilterTrendingToday, Context{Now: now})

	assert.Equal(t, []string{"high", "low", "tie-new", "tie-old"}, ids(got))
	assert.Equal(t, "low", posts[0].ID, "input must not be reordered")
}

func TestTrendingTodayCountsAmplification(t *testing.T) {
	posts := []*models.Post{
		{ID: "plain", CreatedAt: now, Stats: models.Stats{Supports: 2}},
		{ID: "amplified", CreatedAt: now, Stats: models.Stats{Supports: 1}, Amplifications: 1},
	}

	got := Apply(posts, models.FilterTrendingToday, Context{Now: now})

	assert.Equal(t, []string{"amplified", "plain"}, ids(got))
}

func TestNearMe(t *testing.T) {
	posts := []*models.Post{
		{ID: "far", Location: at(10, 10)},
		{ID: "eleven-km", Location: at(0, 0.1)},
		{ID: "no-coords", Location: models.Location{Name: "Ward 4"}},
		{ID: "here", Location: at(0, 0)},
	}
	user := &geo.Point{Lat: 0, Lng: 0}

	got := Apply(posts, models.FilterNearMe, Context{Now: now, UserLocation: user, RadiusKm: 12})
	assert.Equal(t, []string{"here", "eleven-km"}, ids(got))

	got = Apply(posts, models.FilterNearMe, Context{Now: now, UserLocation: user})
	assert.Equal(t, []string{"here"}, ids(got), "default radius is 10km")
}

func TestNearMeWithoutUserLocationPassesThrough(t *testing.T) {
	posts := []*models.Post{{ID: "a"}, {ID: "b", Location: at(1, 1)}}

	got := Apply(posts, models.FilterNearMe, Context{Now: now})

	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestMyMunicipalityKeepsInsertionOrder(t *testing.T) {
	posts := []*models.Post{
		{ID: "1", Location: models.Location{Name: "Sector 5, Pune Municipal Corporation"}},
		{ID: "2", Location: models.Location{Name: "Nagpur"}},
		{ID: "3", Location: models.Location{Name: "pune"}},
	}

	got := Apply(posts, models.FilterMyMunicipality, Context{Municipality: "Pune"})
	assert.Equal(t, []string{"1", "3"}, ids(got))

	got = Apply(posts, models.FilterMyMunicipality, Context{})
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}

func TestMostEscalated(t *testing.T) {
	posts := []*models.Post{
		{ID: "few", CreatedAt: now, Stats: models.Stats{Escalations: 1, Supports: 100}},
		{ID: "many-low", CreatedAt: now, Stats: models.Stats{Escalations: 12, Views: 1}},
		{ID: "many-high", CreatedAt: now, Stats: models.Stats{Escalations: 12, Views: 50}},
	}

	got := Apply(posts, models.FilterMostEscalated, Context{Now: now})

	assert.Equal(t, []string{"many-high", "many-low", "few"}, ids(got))
}

func TestUnknownModePassesThrough(t *testing.T) {
	posts := []*models.Post{{ID: "b"}, nil, {ID: "a"}}

	got := Apply(posts, models.FilterMode("bogus"), Context{Now: now})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"b", "a"}, ids(got))
}
