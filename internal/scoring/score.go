// Package scoring computes time-decayed engagement scores for posts.
//
// Every function takes the evaluation time explicitly. Nothing in this
// package reads the wall clock, so scores are reproducible.
package scoring

import (
	"math"
	"time"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

// Engagement weights
const (
	SupportWeight = 2
	CommentWeight = 3
	ShareWeight   = 4
	ViewWeight    = 1
)

// AmplifyBonus is the flat credit each amplification adds on top of the
// decayed score. It does not decay.
const AmplifyBonus = 5

// DecayHours is the time constant of the exponential decay. At one time
// constant the multiplier is e^-1, roughly 0.368.
const DecayHours = 24.0

// Base returns the undecayed engagement score
func Base(stats models.Stats) int {
	return stats.Supports*SupportWeight +
		stats.Comments*CommentWeight +
		stats.Shares*ShareWeight +
		stats.Views*ViewWeight
}

// Decay returns the multiplier for a post created at createdAt, evaluated at now.
// Future timestamps are clamped to age zero so clock skew cannot inflate a score.
func Decay(createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-hours / DecayHours)
}

// Score returns the engagement score for stats. With applyDecay false the
// base score is returned unchanged.
func Score(stats models.Stats, createdAt, now time.Time, applyDecay bool) int {
	base := Base(stats)
	if base <= 0 {
		return 0
	}
	if !applyDecay {
		return base
	}
	return int(math.Round(float64(base) * Decay(createdAt, now)))
}

// PostScore is the ranking score of a post: the decayed engagement score
// plus the amplification credit.
func PostScore(p *models.Post, now time.Time) int {
	if p == nil {
		return 0
	}
	amplifications := p.Amplifications
	if amplifications < 0 {
		amplifications = 0
	}
	return Score(p.Stats, p.CreatedAt, now, true) + amplifications*AmplifyBonus
}

// Refresh recomputes TrendingScore on every post in place
func Refresh(posts []*models.Post, now time.Time) {
	for _, p := range posts {
		if p != nil {
			p.TrendingScore = PostScore(p, now)
		}
	}
}
