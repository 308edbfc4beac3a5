package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a reported civic issue
type Status string

const (
	StatusReported   Status = "reported"
	StatusVerified   Status = "verified"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Urgency is how pressing an issue is considered to be
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyModerate Urgency = "moderate"
	UrgencyCritical Urgency = "critical"
)

// Location is where an issue was reported. Lat/Lng are optional because
// many reports only carry a place name.
type Location struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// Stats holds the engagement counters of a post. All values are non-negative.
type Stats struct {
	Views       int `json:"views"`
	Supports    int `json:"supports"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Escalations int `json:"escalations"`
}

// Post is a community report as delivered by the feed source.
// TrendingScore is derived and gets overwritten on every render.
type Post struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Author         string    `json:"author,omitempty"`
	Location       Location  `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	Caption        string    `json:"caption"`
	Hashtags       []string  `json:"hashtags"`
	Status         Status    `json:"status"`
	Urgency        Urgency   `json:"urgency"`
	Stats          Stats     `json:"stats"`
	Amplifications int       `json:"amplifications"`
	TrendingScore  int       `json:"trending_score"`
}

// Clone returns a deep copy so callers can hand out snapshots
// without sharing the hashtag slice or coordinate pointers.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Hashtags != nil {
		cp.Hashtags = append([]string(nil), p.Hashtags...)
	}
	if p.Location.Lat != nil {
		lat := *p.Location.Lat
		cp.Location.Lat = &lat
	}
	if p.Location.Lng != nil {
		lng := *p.Location.Lng
		cp.Location.Lng = &lng
	}
	return &cp
}

// Comment is a user comment on a post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TrendingTopic is a hashtag ranked by the combined score of the posts carrying it
type TrendingTopic struct {
	Hashtag        string `json:"hashtag"`
	PostCount      int    `json:"post_count"`
	AggregateScore int    `json:"aggregate_score"`
}

// LeaderboardEntry is passed through from the remote API untouched
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// FilterMode selects how the feed is ordered and filtered
type FilterMode string

const (
	FilterTrendingToday  FilterMode = "trending_today"
	FilterNearMe         FilterMode = "near_me"
	FilterMyMunicipality FilterMode = "my_municipality"
	FilterMostEscalated  FilterMode = "most_escalated"
)

// FilterModes lists every supported mode in display order
var FilterModes = []FilterMode{
	FilterTrendingToday,
	FilterNearMe,
	FilterMyMunicipality,
	FilterMostEscalated,
}

// ParseFilterMode converts user input to a FilterMode. Unknown input is
// returned trimmed but otherwise as given, with ok false; the filter
// passes such modes through unchanged.
func ParseFilterMode(s string) (FilterMode, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "trending_today", "trending-today", "trending":
		return FilterTrendingToday, true
	case "near_me", "near-me", "nearby":
		return FilterNearMe, true
	case "my_municipality", "my-municipality", "municipality":
		return FilterMyMunicipality, true
	case "most_escalated", "most-escalated", "escalated":
		return FilterMostEscalated, true
	default:
		return FilterMode(s), false
	}
}

// Valid reports whether m is one of the known modes
func (m FilterMode) Valid() bool {
	for _, known := range FilterModes {
		if m == known {
			return true
		}
	}
	return false
}
