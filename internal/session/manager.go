package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/interactions"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/metrics"
	"github.com/JanConnect/JanConnect-sub001/internal/source"
)

// Manager keeps one Session per user for the thin service
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed
	remote   source.Source
	store    interactions.Store
	opts     Options
	now      func() time.Time
}

type managed struct {
	session  *Session
	lastSeen time.Time
}

// NewManager creates a manager whose sessions share remote and store
func NewManager(remote source.Source, store interactions.Store, opts Options) *Manager {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*managed),
		remote:   remote,
		store:    store,
		opts:     opts,
		now:      now,
	}
}

// Get returns userID's session, creating and loading it on first use.
// The store is read without holding the manager lock.
func (m *Manager) Get(ctx context.Context, userID string) (*Session, error) {
	if s, ok := m.touch(userID); ok {
		return s, nil
	}

	s, err := New(ctx, userID, m.remote, m.store, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[userID]; ok {
		// a concurrent first request won
		e.lastSeen = m.now()
		return e.session, nil
	}
	m.sessions[userID] = &managed{session: s, lastSeen: m.now()}
	metrics.Get().ActiveSessions.Inc()
	logger.Log.Info("Session started", logger.WithUserID(userID))
	return s, nil
}

func (m *Manager) touch(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.session, true
}

// Drop forgets userID's session. Persisted state is kept.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[userID]; ok {
		delete(m.sessions, userID)
		metrics.Get().ActiveSessions.Dec()
		logger.Log.Info("Session ended", logger.WithUserID(userID))
	}
}

// EvictIdle drops sessions not used for longer than maxIdle and returns
// how many were dropped
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	n := 0
	for userID, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, userID)
			n++
		}
	}
	if n > 0 {
		metrics.Get().ActiveSessions.Sub(float64(n))
		logger.Log.Info("Evicted idle sessions", zap.Int("count", n), zap.Duration("max_idle", maxIdle))
	}
	return n
}

// RunEviction calls EvictIdle every interval until ctx is done
func (m *Manager) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(maxIdle)
		}
	}
}

// Ping checks the interaction store when it supports health checks
func (m *Manager) Ping(ctx context.Context) error {
	if p, ok := m.store.(interactions.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
