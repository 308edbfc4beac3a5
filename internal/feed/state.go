// Package feed holds the loaded post set and the paginator that fills it.
package feed

import (
	"sync"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

// State is the ephemeral set of loaded posts in arrival order. It is
// rebuilt from the source on refresh and never persisted.
type State struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Post
}

// NewState returns an empty State
func NewState() *State {
	return &State{byID: make(map[string]*models.Post)}
}

// Replace discards the current set and loads posts
func (s *State) Replace(posts []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.byID = make(map[string]*models.Post, len(posts))
	s.appendLocked(posts)
}

// Append adds posts after the current set. A post whose id is already
// loaded replaces the stored copy in place. Returns how many were new.
func (s *State) Append(posts []*models.Post) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(posts)
}

func (s *State) appendLocked(posts []*models.Post) int {
	added := 0
	for _, p := range posts {
		if p == nil || p.ID == "" {
			continue
		}
		if _, exists := s.byID[p.ID]; !exists {
			s.order = append(s.order, p.ID)
			added++
		}
		s.byID[p.ID] = p.Clone()
	}
	return added
}

// Get returns a copy of the post with id
func (s *State) Get(id string) (*models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Update applies fn to the stored post and returns a copy of the result
func (s *State) Update(id string, fn func(p *models.Post)) (*models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	fn(p)
	return p.Clone(), true
}

// Snapshot returns copies of all posts in arrival order
func (s *State) Snapshot() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Post, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Len returns the number of loaded posts
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
