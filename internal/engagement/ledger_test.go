package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/interactions"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

var ledgerNow = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

type LedgerTestSuite struct {
	suite.Suite
	state  *feed.State
	store  *interactions.MemoryStore
	ledger *Ledger
	ctx    context.Context
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.state = feed.NewState()
	s.state.Replace([]*models.Post{
		{ID: "p1", CreatedAt: ledgerNow, Urgency: models.UrgencyLow, Stats: models.Stats{Supports: 3}},
		{ID: "p2", CreatedAt: ledgerNow, Urgency: models.UrgencyModerate, Stats: models.Stats{Escalations: 9}},
	})
	s.store = interactions.NewMemoryStore()
	s.ledger = NewLedger(s.state, s.store, WithClock(func() time.Time { return ledgerNow }))
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) TestSupportIsIdempotent() {
	p, err := s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Equal(4, p.Stats.Supports)
	s.Equal(8, p.TrendingScore)

	p, err = s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Equal(4, p.Stats.Supports, "second support is a no-op")

	// a different user counts separately
	p, err = s.ledger.Support(s.ctx, "u2", "p1")
	s.Require().NoError(err)
	s.Equal(5, p.Stats.Supports)

	s.True(s.ledger.HasApplied("u1", "p1", ActionSupport))
	s.False(s.ledger.HasApplied("u1", "p1", ActionEscalate))
	s.Equal(2, s.store.Saves, "duplicate actions do not flush")
}

func (s *LedgerTestSuite) TestEscalationPromotesToCritical() {
	p, err := s.ledger.Escalate(s.ctx, "u1", "p2", "")
	s.Require().NoError(err)
	s.Equal(10, p.Stats.Escalations)
	s.Equal(models.UrgencyModerate, p.Urgency, "threshold must be exceeded, not reached")

	p, err = s.ledger.Escalate(s.ctx, "u2", "p2", "drain still open")
	s.Require().NoError(err)
	s.Equal(11, p.Stats.Escalations)
	s.Equal(models.UrgencyCritical, p.Urgency)

	// promotion is one-way even if the counter is later lowered by a refresh
	s.state.Update("p2", func(p *models.Post) { p.Stats.Escalations = 2 })
	p, err = s.ledger.Escalate(s.ctx, "u3", "p2", "")
	s.Require().NoError(err)
	s.Equal(models.UrgencyCritical, p.Urgency)
}

func (s *LedgerTestSuite) TestAmplifyAddsFlatBonus() {
	before, _ := s.state.Get("p1")
	p, err := s.ledger.Amplify(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Equal(1, p.Amplifications)
	s.Equal(before.Stats.Supports*2+5, p.TrendingScore)

	p, err = s.ledger.Amplify(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Equal(1, p.Amplifications)
}

func (s *LedgerTestSuite) TestUnknownPost() {
	_, err := s.ledger.Support(s.ctx, "u1", "nope")
	s.ErrorIs(err, ErrPostNotFound)
	_, err = s.ledger.AddComment(s.ctx, "u1", "nope", "hello")
	s.ErrorIs(err, ErrPostNotFound)
	s.ErrorIs(s.ledger.SavePost(s.ctx, "u1", "nope"), ErrPostNotFound)
	s.False(s.ledger.HasApplied("u1", "nope", ActionSupport))
}

func (s *LedgerTestSuite) TestCommentsAreNotIdempotent() {
	c1, err := s.ledger.AddComment(s.ctx, "u1", "p1", "  same issue on my street ")
	s.Require().NoError(err)
	s.Equal("same issue on my street", c1.Text)
	s.Equal(ledgerNow, c1.CreatedAt)
	s.NotEmpty(c1.ID)

	c2, err := s.ledger.AddComment(s.ctx, "u1", "p1", "still not fixed")
	s.Require().NoError(err)
	s.NotEqual(c1.ID, c2.ID)

	p, _ := s.state.Get("p1")
	s.Equal(2, p.Stats.Comments)
	s.Equal(3*2+2*3, p.TrendingScore)

	comments := s.ledger.Comments("p1")
	s.Require().Len(comments, 2)
	s.Equal(c1.ID, comments[0].ID)
	s.Empty(s.ledger.Comments("p2"))

	_, err = s.ledger.AddComment(s.ctx, "u1", "p1", "   ")
	s.ErrorIs(err, ErrEmptyComment)
}

func (s *LedgerTestSuite) TestStateIsPersistedAndReloaded() {
	_, err := s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	_, err = s.ledger.Escalate(s.ctx, "u1", "p2", "")
	s.Require().NoError(err)
	_, err = s.ledger.Amplify(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.SavePost(s.ctx, "u1", "p2"))

	saved, err := s.store.Load(s.ctx, "u1")
	s.Require().NoError(err)
	s.True(saved.UserSupports["p1"])
	s.True(saved.UserEscalations["p2"])
	s.True(saved.UserAmplifications["p1"])
	s.Require().Len(saved.SavedPosts, 1)
	s.Equal("p2", saved.SavedPosts[0].ID)

	// a fresh ledger over the same store refuses to double count
	fresh := NewLedger(s.state, s.store, WithClock(func() time.Time { return ledgerNow }))
	s.Require().NoError(fresh.Load(s.ctx, "u1"))
	s.True(fresh.HasApplied("u1", "p1", ActionSupport))
	s.Len(fresh.SavedPosts("u1"), 1)

	before, _ := s.state.Get("p1")
	p, err := fresh.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Equal(before.Stats.Supports, p.Stats.Supports)
}

func (s *LedgerTestSuite) TestSaveAndUnsave() {
	s.Require().NoError(s.ledger.SavePost(s.ctx, "u1", "p1"))
	s.Require().NoError(s.ledger.SavePost(s.ctx, "u1", "p1"))
	s.Require().NoError(s.ledger.SavePost(s.ctx, "u1", "p2"))
	s.Len(s.ledger.SavedPosts("u1"), 2)
	s.Empty(s.ledger.SavedPosts("u2"))

	_, err := s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)

	s.Require().NoError(s.ledger.UnsavePost(s.ctx, "u1", "p1"))
	s.Require().NoError(s.ledger.UnsavePost(s.ctx, "u1", "p1"))
	saved := s.ledger.SavedPosts("u1")
	s.Require().Len(saved, 1)
	s.Equal("p2", saved[0].ID)
	s.True(s.ledger.HasApplied("u1", "p1", ActionSupport), "unsave keeps idempotency records")

	persisted, err := s.store.Load(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(persisted.SavedPosts, 1)
}

func (s *LedgerTestSuite) TestReset() {
	_, err := s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	_, err = s.ledger.Support(s.ctx, "u2", "p1")
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.SavePost(s.ctx, "u1", "p1"))

	s.Require().NoError(s.ledger.Reset(s.ctx, "u1"))
	s.False(s.ledger.HasApplied("u1", "p1", ActionSupport))
	s.True(s.ledger.HasApplied("u2", "p1", ActionSupport))
	s.Empty(s.ledger.SavedPosts("u1"))

	persisted, err := s.store.Load(s.ctx, "u1")
	s.Require().NoError(err)
	s.Empty(persisted.UserSupports)

	// counters already applied are kept
	p, _ := s.state.Get("p1")
	s.Equal(5, p.Stats.Supports)
}

func (s *LedgerTestSuite) TestFlushFailureKeepsEffect() {
	s.store.SaveErr = errors.New("disk full")

	p, err := s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().Error(err)
	s.ErrorIs(err, ErrPersistFailed)
	s.Contains(err.Error(), "disk full")
	s.Require().NotNil(p)
	s.Equal(4, p.Stats.Supports)
	s.True(s.ledger.HasApplied("u1", "p1", ActionSupport))

	s.store.SaveErr = nil
	p, err = s.ledger.Support(s.ctx, "u1", "p1")
	s.Require().NoError(err)
	s.Equal(4, p.Stats.Supports)
}

func (s *LedgerTestSuite) TestApplyReportsFirstEffectOnly() {
	key := Key{UserID: "u1", PostID: "p1", Action: ActionAmplify}

	p, applied, err := s.ledger.Apply(s.ctx, key, "")
	s.Require().NoError(err)
	s.True(applied)
	s.Equal(1, p.Amplifications)

	p, applied, err = s.ledger.Apply(s.ctx, key, "")
	s.Require().NoError(err)
	s.False(applied)
	s.Equal(1, p.Amplifications)

	_, applied, err = s.ledger.Apply(s.ctx, Key{UserID: "u1", PostID: "p1", Action: "boost"}, "")
	s.ErrorIs(err, ErrUnknownAction)
	s.False(applied)
}

func (s *LedgerTestSuite) TestApplyReportsAppliedWhenPersistFails() {
	s.store.SaveErr = errors.New("disk full")

	p, applied, err := s.ledger.Apply(s.ctx, Key{UserID: "u1", PostID: "p1", Action: ActionSupport}, "")
	s.ErrorIs(err, ErrPersistFailed)
	s.True(applied)
	s.Equal(4, p.Stats.Supports)
}

func TestLedger_ConcurrentApplyReportsOneWinner(t *testing.T) {
	state := feed.NewState()
	state.Replace([]*models.Post{{ID: "p1"}})
	ledger := NewLedger(state, interactions.NewMemoryStore())

	wins := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, applied, err := ledger.Apply(context.Background(), Key{UserID: "u1", PostID: "p1", Action: ActionSupport}, "")
			assert.NoError(t, err)
			wins <- applied
		}()
	}
	n := 0
	for i := 0; i < 20; i++ {
		if <-wins {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestLedger_ConcurrentSupportsCountOnce(t *testing.T) {
	state := feed.NewState()
	state.Replace([]*models.Post{{ID: "p1"}})
	ledger := NewLedger(state, interactions.NewMemoryStore())

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := ledger.Support(context.Background(), "u1", "p1")
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	p, ok := state.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 1, p.Stats.Supports)
}
