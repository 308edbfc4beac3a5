package interactions

import (
	"context"
	"sync"
)

// MemoryStore keeps state in process memory. It is used by tests and by
// demo runs that must not touch disk.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State

	// SaveErr, when set, is returned by Save
	SaveErr error
	// ResetErr, when set, is returned by Reset
	ResetErr error
	// PingErr, when set, is returned by Ping
	PingErr error
	// Saves counts successful Save calls
	Saves int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Pinger = (*MemoryStore)(nil)
)

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingErr
}

func (m *MemoryStore) Load(ctx context.Context, userID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[userID]; ok {
		return s.Clone(), nil
	}
	return NewState(), nil
}

func (m *MemoryStore) Save(ctx context.Context, userID string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.states[userID] = state.Clone()
	m.Saves++
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResetErr != nil {
		return m.ResetErr
	}
	delete(m.states, userID)
	return nil
}
