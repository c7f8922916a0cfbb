// Package policy turns a learner's aggregate performance into the
// generation policy: skill level, target difficulty, and the weak /
// mastered / new concept sets that focus content generation.
package policy

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/store"
)

// Config holds the classification thresholds.
type Config struct {
	// RecentWindow is how many recent results feed the policy.
	RecentWindow int

	// AdaptiveWindow is how many of those feed the difficulty adjustment.
	AdaptiveWindow int

	// WeakAccuracy marks a concept weak below this accuracy.
	WeakAccuracy float64

	// MasteredAccuracy marks a concept mastered above this accuracy.
	MasteredAccuracy float64

	// MinAttempts is the attempt floor for weak/mastered classification.
	MinAttempts int

	// MaxWeak, MaxMastered, MaxNew cap the topic lists.
	MaxWeak     int
	MaxMastered int
	MaxNew      int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		RecentWindow:     20,
		AdaptiveWindow:   10,
		WeakAccuracy:     0.70,
		MasteredAccuracy: 0.90,
		MinAttempts:      3,
		MaxWeak:          5,
		MaxMastered:      5,
		MaxNew:           10,
	}
}

// Builder computes generation policies from exercise history.
type Builder struct {
	cfg      Config
	results  store.ResultRepo
	concepts store.ConceptRepo
	log      *logger.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(cfg Config, results store.ResultRepo, concepts store.ConceptRepo, baseLog *logger.Logger) *Builder {
	return &Builder{
		cfg:      cfg,
		results:  results,
		concepts: concepts,
		log:      baseLog.With("component", "policy"),
	}
}

// BuildContext computes the learner's generation policy. A learner with no
// history is a normal case and yields the beginner default — this never
// fails for empty data.
func (b *Builder) BuildContext(ctx context.Context, learnerID uuid.UUID) (*GenerationPolicy, error) {
	totals, err := b.results.Totals(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	recent, err := b.results.RecentByLearner(ctx, learnerID, b.cfg.RecentWindow)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	aggs, err := b.results.ConceptAggregates(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	newConcepts, err := b.concepts.UnattemptedByLearner(ctx, learnerID, b.cfg.MaxNew)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	p := &GenerationPolicy{
		Level:       levelFor(totals),
		Streak:      streakOf(recent),
		NewConcepts: conceptIDs(newConcepts),
	}
	p.Difficulty = b.difficultyFor(totals, recent, p.Streak)
	p.WeakConcepts, p.MasteredConcepts = b.classify(aggs)

	return p, nil
}

// levelFor buckets the learner by total volume and overall accuracy.
func levelFor(t store.LearnerTotals) Level {
	switch {
	case t.Attempts < 20 || t.Accuracy() < 0.60:
		return LevelBeginner
	case t.Attempts > 50 && t.Accuracy() > 0.85:
		return LevelAdvanced
	default:
		return LevelIntermediate
	}
}

// difficultyFor computes base difficulty from lifetime stats, then adjusts
// it using the most recent results and the current streak.
func (b *Builder) difficultyFor(t store.LearnerTotals, recent []*store.ExerciseResult, streak int) int {
	var base float64
	switch {
	case t.Attempts < 10:
		base = 1
	case t.Accuracy() > 0.85:
		base = 4
	case t.Accuracy() < 0.60:
		base = 2
	default:
		base = 3
	}

	window := recent
	if len(window) > b.cfg.AdaptiveWindow {
		window = window[:b.cfg.AdaptiveWindow]
	}
	if len(window) > 0 {
		correct := 0
		for _, r := range window {
			if r.Correct {
				correct++
			}
		}
		recentAcc := float64(correct) / float64(len(window))

		switch {
		case recentAcc > 0.85 && streak > 5:
			base++
		case recentAcc < 0.60:
			base--
		case recentAcc >= 0.75 && recentAcc <= 0.85 && streak > 10:
			base += 0.5
		}
	}

	d := int(math.Round(base))
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return d
}

// classify splits the learner's per-concept history into weak and
// mastered sets, each capped and ordered by how extreme the accuracy is.
func (b *Builder) classify(aggs []store.ConceptAggregate) (weak, mastered []string) {
	var weakAggs, masteredAggs []store.ConceptAggregate
	for _, a := range aggs {
		if a.Attempts < b.cfg.MinAttempts {
			continue
		}
		switch {
		case a.Accuracy() < b.cfg.WeakAccuracy:
			weakAggs = append(weakAggs, a)
		case a.Accuracy() > b.cfg.MasteredAccuracy:
			masteredAggs = append(masteredAggs, a)
		}
	}

	sort.Slice(weakAggs, func(i, j int) bool {
		if weakAggs[i].Accuracy() != weakAggs[j].Accuracy() {
			return weakAggs[i].Accuracy() < weakAggs[j].Accuracy()
		}
		return weakAggs[i].ConceptID < weakAggs[j].ConceptID
	})
	sort.Slice(masteredAggs, func(i, j int) bool {
		if masteredAggs[i].Accuracy() != masteredAggs[j].Accuracy() {
			return masteredAggs[i].Accuracy() > masteredAggs[j].Accuracy()
		}
		return masteredAggs[i].ConceptID < masteredAggs[j].ConceptID
	})

	if len(weakAggs) > b.cfg.MaxWeak {
		weakAggs = weakAggs[:b.cfg.MaxWeak]
	}
	if len(masteredAggs) > b.cfg.MaxMastered {
		masteredAggs = masteredAggs[:b.cfg.MaxMastered]
	}

	for _, a := range weakAggs {
		weak = append(weak, a.ConceptID)
	}
	for _, a := range masteredAggs {
		mastered = append(mastered, a.ConceptID)
	}
	return weak, mastered
}

// streakOf counts consecutive correct results from the most recent
// backward, stopping at the first incorrect. Input is newest-first.
func streakOf(recent []*store.ExerciseResult) int {
	streak := 0
	for _, r := range recent {
		if !r.Correct {
			break
		}
		streak++
	}
	return streak
}

func conceptIDs(cs []*store.Concept) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
