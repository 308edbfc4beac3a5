// Package interactions persists the per-user interaction state: saved posts
// and the idempotency maps for supports, escalations and amplifications.
// Feed posts themselves are never persisted here.
package interactions

import (
	"context"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

// State is the durable blob for one user. Field names match the
// client-side storage shape so existing blobs can be imported as-is.
type State struct {
	SavedPosts         []models.Post   `json:"savedPosts"`
	UserSupports       map[string]bool `json:"userSupports"`
	UserEscalations    map[string]bool `json:"userEscalations"`
	UserAmplifications map[string]bool `json:"userAmplifications"`
}

// NewState returns an empty, ready-to-use state
func NewState() *State {
	return &State{
		SavedPosts:         []models.Post{},
		UserSupports:       map[string]bool{},
		UserEscalations:    map[string]bool{},
		UserAmplifications: map[string]bool{},
	}
}

// normalize fills nil maps left by an older or partial blob
func (s *State) normalize() *State {
	if s.SavedPosts == nil {
		s.SavedPosts = []models.Post{}
	}
	if s.UserSupports == nil {
		s.UserSupports = map[string]bool{}
	}
	if s.UserEscalations == nil {
		s.UserEscalations = map[string]bool{}
	}
	if s.UserAmplifications == nil {
		s.UserAmplifications = map[string]bool{}
	}
	return s
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	out := NewState()
	for _, p := range s.SavedPosts {
		out.SavedPosts = append(out.SavedPosts, *p.Clone())
	}
	for k, v := range s.UserSupports {
		out.UserSupports[k] = v
	}
	for k, v := range s.UserEscalations {
		out.UserEscalations[k] = v
	}
	for k, v := range s.UserAmplifications {
		out.UserAmplifications[k] = v
	}
	return out
}

// Store loads and saves interaction state. Load returns an empty State,
// not an error, when nothing has been stored for the user yet.
type Store interface {
	Load(ctx context.Context, userID string) (*State, error)
	Save(ctx context.Context, userID string, state *State) error
	Reset(ctx context.Context, userID string) error
}

// Pinger is implemented by stores that can report backend health
type Pinger interface {
	Ping(ctx context.Context) error
}
