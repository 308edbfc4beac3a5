package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

func TestState_ReplaceAndAppend(t *testing.T) {
	s := NewState()
	s.Replace([]*models.Post{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, 2, s.Len())

	added := s.Append([]*models.Post{{ID: "c"}, {ID: "a", Caption: "updated"}, nil, {ID: ""}})
	assert.Equal(t, 1, added)

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snap))
	assert.Equal(t, "updated", snap[0].Caption, "re-delivered post replaces the stored copy")

	s.Replace([]*models.Post{{ID: "z"}})
	assert.Equal(t, []string{"z"}, ids(s.Snapshot()))
}

func TestState_GetAndUpdateCopy(t *testing.T) {
	s := NewState()
	orig := &models.Post{ID: "a", Hashtags: []string{"water"}}
	s.Replace([]*models.Post{orig})

	// the state keeps its own copy
	orig.Hashtags[0] = "mutated"
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "water", got.Hashtags[0])

	got.Stats.Supports = 99
	again, _ := s.Get("a")
	assert.Zero(t, again.Stats.Supports)

	updated, ok := s.Update("a", func(p *models.Post) { p.Stats.Supports++ })
	require.True(t, ok)
	assert.Equal(t, 1, updated.Stats.Supports)
	again, _ = s.Get("a")
	assert.Equal(t, 1, again.Stats.Supports)

	_, ok = s.Update("missing", func(p *models.Post) {})
	assert.False(t, ok)
	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func ids(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
