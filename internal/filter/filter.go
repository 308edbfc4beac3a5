// Package filter orders and filters a post set according to a feed filter mode.
package filter

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/geo"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/scoring"
)

// DefaultRadiusKm is the NearMe radius used when none is configured
const DefaultRadiusKm = 10.0

// Context carries the inputs some modes need
type Context struct {
	Now          time.Time
	UserLocation *geo.Point
	Municipality string
	RadiusKm     float64
}

func (c Context) radius() float64 {
	if c.RadiusKm <= 0 {
		return DefaultRadiusKm
	}
	return c.RadiusKm
}

// Apply returns the posts for mode in display order. The input slice is
// never reordered. Unknown modes pass posts through unchanged.
func Apply(posts []*models.Post, mode models.FilterMode, ctx Context) []*models.Post {
	switch mode {
	case models.FilterTrendingToday:
		return trendingToday(posts, ctx.Now)
	case models.FilterNearMe:
		return nearMe(posts, ctx)
	case models.FilterMyMunicipality:
		return myMunicipality(posts, ctx.Municipality)
	case models.FilterMostEscalated:
		return mostEscalated(posts, ctx.Now)
	default:
		logger.Log.Warn("Unknown feed filter mode, passing feed through", logger.WithMode(string(mode)))
		return passThrough(posts)
	}
}

func passThrough(posts []*models.Post) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func trendingToday(posts []*models.Post, now time.Time) []*models.Post {
	out := passThrough(posts)
	scores := scoreIndex(out, now)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scores[out[i]], scores[out[j]]
		if si != sj {
			return si > sj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func mostEscalated(posts []*models.Post, now time.Time) []*models.Post {
	out := passThrough(posts)
	scores := scoreIndex(out, now)
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].Stats.Escalations, out[j].Stats.Escalations
		if ei != ej {
			return ei > ej
		}
		return scores[out[i]] > scores[out[j]]
	})
	return out
}

func nearMe(posts []*models.Post, ctx Context) []*models.Post {
	if ctx.UserLocation == nil {
		logger.Log.Warn("Near-me filter requested without a user location, passing feed through")
		return passThrough(posts)
	}

	type ranked struct {
		post *models.Post
		km   float64
	}

	radius := ctx.radius()
	within := make([]ranked, 0, len(posts))
	dropped := 0
	for _, p := range posts {
		if p == nil || !p.Location.HasCoordinates() {
			dropped++
			continue
		}
		km := geo.Distance(*ctx.UserLocation, geo.Point{Lat: *p.Location.Lat, Lng: *p.Location.Lng})
		if km <= radius {
			within = append(within, ranked{post: p, km: km})
		}
	}

	sort.SliceStable(within, func(i, j int) bool {
		return within[i].km < within[j].km
	})

	if dropped > 0 {
		logger.Log.Debug("Near-me filter skipped posts without coordinates", zap.Int("count", dropped))
	}

	out := make([]*models.Post, len(within))
	for i, r := range within {
		out[i] = r.post
	}
	return out
}

func myMunicipality(posts []*models.Post, municipality string) []*models.Post {
	needle := strings.ToLower(strings.TrimSpace(municipality))
	if needle == "" {
		return passThrough(posts)
	}
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil && strings.Contains(strings.ToLower(p.Location.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

func scoreIndex(posts []*models.Post, now time.Time) map[*models.Post]int {
	scores := make(map[*models.Post]int, len(posts))
	for _, p := range posts {
		scores[p] = scoring.PostScore(p, now)
	}
	return scores
}
