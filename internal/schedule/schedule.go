// Package schedule computes spaced-repetition review times from mastery
// state. The interval grows geometrically with the learner's current run
// of consecutive correct answers and is capped so no concept leaves the
// review rotation entirely.
package schedule

import (
	"math"
	"time"

	"github.com/lexloop/lexloop/internal/store"
)

// Config holds the interval curve parameters.
type Config struct {
	// BaseInterval is the interval for a concept with no correct run.
	BaseInterval time.Duration

	// MaxInterval caps the computed interval.
	MaxInterval time.Duration

	// Growth factors by mastery band. Higher mastery grows the
	// interval faster.
	GrowthHigh float64 // masteryScore >= 0.8
	GrowthMid  float64 // masteryScore >= 0.5
	GrowthLow  float64 // below 0.5
}

// DefaultConfig returns the standard curve: 1 day base, 90 day cap.
func DefaultConfig() Config {
	return Config{
		BaseInterval: 24 * time.Hour,
		MaxInterval:  90 * 24 * time.Hour,
		GrowthHigh:   2.5,
		GrowthMid:    1.8,
		GrowthLow:    1.3,
	}
}

// Scheduler computes next-review timestamps. It is stateless: NextReview
// is a pure function of the record and the clock.
type Scheduler struct {
	cfg Config
}

// New creates a Scheduler with the given config.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// NextReview returns when the concept should next be reviewed.
//
// The growth exponent is the current run of consecutive correct answers
// (LastOutcomeStreak floored at zero), not the lifetime correct count:
// a single incorrect answer resets the curve to the base interval. This
// is the "full reset" variant of the reset-on-incorrect policy.
func (s *Scheduler) NextReview(rec *store.MasteryRecord, now time.Time) time.Time {
	return now.Add(s.Interval(rec))
}

// Interval returns the review interval for the record's current state.
func (s *Scheduler) Interval(rec *store.MasteryRecord) time.Duration {
	run := rec.LastOutcomeStreak
	if run < 0 {
		run = 0
	}

	growth := s.growthFactor(rec.MasteryScore)
	interval := time.Duration(float64(s.cfg.BaseInterval) * math.Pow(growth, float64(run)))

	if interval > s.cfg.MaxInterval || interval < 0 {
		interval = s.cfg.MaxInterval
	}
	if interval < s.cfg.BaseInterval {
		interval = s.cfg.BaseInterval
	}
	return interval
}

func (s *Scheduler) growthFactor(masteryScore float64) float64 {
	switch {
	case masteryScore >= 0.8:
		return s.cfg.GrowthHigh
	case masteryScore >= 0.5:
		return s.cfg.GrowthMid
	default:
		return s.cfg.GrowthLow
	}
}
