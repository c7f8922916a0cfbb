// Package mastery maintains per-(learner, concept) mastery records: the
// counters, score, confidence tier, and next-review time that everything
// else in the engine reads.
package mastery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/schedule"
	"github.com/lexloop/lexloop/internal/store"
)

// ErrInvalidInput reports a malformed identifier or out-of-range value.
// Always the caller's fault; never retried.
var ErrInvalidInput = errors.New("invalid input")

// Config holds the scoring parameters.
type Config struct {
	// AccuracyWeight scales the accuracy component of the score.
	AccuracyWeight float64

	// MaxRecencyBonus is the bonus for a correct answer just given.
	// The bonus decays toward zero as the last correct answer ages.
	MaxRecencyBonus float64

	// RecencyHalfLife is the age at which the recency bonus halves.
	RecencyHalfLife time.Duration

	// StreakThreshold is the correct-run length at which the streak
	// multiplier kicks in.
	StreakThreshold int

	// StreakMultiplier is applied to the score once the run reaches
	// StreakThreshold.
	StreakMultiplier float64

	// WeakThreshold is the mastery score below which a concept counts
	// as weak for GetWeakConcepts.
	WeakThreshold float64
}

// DefaultConfig returns the standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		AccuracyWeight:   0.7,
		MaxRecencyBonus:  0.2,
		RecencyHalfLife:  72 * time.Hour,
		StreakThreshold:  3,
		StreakMultiplier: 1.15,
		WeakThreshold:    0.7,
	}
}

// Scorer records exposures and keeps mastery records consistent. All
// mutation of a (learner, concept) record goes through RecordExposure,
// serialized per key.
type Scorer struct {
	cfg       Config
	records   store.MasteryRepo
	results   store.ResultRepo
	scheduler *schedule.Scheduler
	locks     *keyMutex
	log       *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config, records store.MasteryRepo, results store.ResultRepo, scheduler *schedule.Scheduler, baseLog *logger.Logger) *Scorer {
	return &Scorer{
		cfg:       cfg,
		records:   records,
		results:   results,
		scheduler: scheduler,
		locks:     newKeyMutex(),
		log:       baseLog.With("component", "mastery"),
		now:       time.Now,
	}
}

// RecordExposure applies one exposure event: appends the immutable result
// event, updates the mastery record (upsert — the first exposure creates
// it), and schedules the next review. Each call is one real exposure;
// counters always increment.
func (s *Scorer) RecordExposure(ctx context.Context, learnerID uuid.UUID, conceptID string, correct bool, responseTimeMs int) (*store.MasteryRecord, error) {
	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: learner id is empty", ErrInvalidInput)
	}
	if conceptID == "" {
		return nil, fmt.Errorf("%w: concept id is empty", ErrInvalidInput)
	}
	if responseTimeMs < 0 {
		return nil, fmt.Errorf("%w: response time %d is negative", ErrInvalidInput, responseTimeMs)
	}

	key := learnerID.String() + "|" + conceptID
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	now := s.now()

	// The result event is the durable source of truth; it is written first
	// and its failure propagates. Losing an exposure silently would corrupt
	// the mastery model.
	if err := s.results.Append(ctx, &store.ExerciseResult{
		LearnerID:      learnerID,
		ConceptID:      conceptID,
		Correct:        correct,
		ResponseTimeMs: responseTimeMs,
		CreatedAt:      now,
	}); err != nil {
		return nil, err
	}

	rec, err := s.records.Get(ctx, learnerID, conceptID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &store.MasteryRecord{
			LearnerID: learnerID,
			ConceptID: conceptID,
			CreatedAt: now,
		}
	}

	s.applyExposure(rec, correct, responseTimeMs, now)
	rec.UpdatedAt = now

	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Debug("exposure recorded",
		"learner_id", learnerID, "concept_id", conceptID,
		"correct", correct, "mastery_score", rec.MasteryScore,
		"tier", rec.ConfidenceTier, "streak", rec.LastOutcomeStreak)

	return rec, nil
}

// applyExposure mutates rec in place for one exposure at time now.
func (s *Scorer) applyExposure(rec *store.MasteryRecord, correct bool, responseTimeMs int, now time.Time) {
	rec.ExposureCount++
	if correct {
		rec.CorrectCount++
		rec.LastCorrectAt = &now
		if rec.LastOutcomeStreak < 0 {
			rec.LastOutcomeStreak = 0
		}
		rec.LastOutcomeStreak++
	} else {
		rec.IncorrectCount++
		if rec.LastOutcomeStreak > 0 {
			rec.LastOutcomeStreak = 0
		}
		rec.LastOutcomeStreak--
	}
	rec.LastExposureAt = &now

	// Running aggregation for response times.
	rec.AvgResponseTimeMs += (float64(responseTimeMs) - rec.AvgResponseTimeMs) / float64(rec.ExposureCount)
	if rec.ExposureCount == 1 || responseTimeMs < rec.FastestResponseTimeMs {
		rec.FastestResponseTimeMs = responseTimeMs
	}

	rec.MasteryScore = s.score(rec, now)
	rec.ConfidenceTier = ConfidenceTier(rec.MasteryScore)

	next := s.scheduler.NextReview(rec, now)
	rec.NextReviewAt = &next
}

// score computes the mastery score from the record's current state.
// Always derived from the accumulated history; never drifts independently.
func (s *Scorer) score(rec *store.MasteryRecord, now time.Time) float64 {
	accuracy := rec.Accuracy()

	score := accuracy*s.cfg.AccuracyWeight + s.recencyBonus(rec, now)

	if rec.LastOutcomeStreak >= s.cfg.StreakThreshold {
		score *= s.cfg.StreakMultiplier
	}

	return clamp(score, 0, 1)
}

// recencyBonus rewards a recent correct answer, decaying exponentially
// with the age of the last correct outcome. Zero when the most recent
// outcome was incorrect.
func (s *Scorer) recencyBonus(rec *store.MasteryRecord, now time.Time) float64 {
	if rec.LastOutcomeStreak <= 0 || rec.LastCorrectAt == nil {
		return 0
	}
	age := now.Sub(*rec.LastCorrectAt)
	if age < 0 {
		age = 0
	}
	halfLives := float64(age) / float64(s.cfg.RecencyHalfLife)
	return s.cfg.MaxRecencyBonus * math.Pow(0.5, halfLives)
}

// GetDueForReview returns records whose next review time has passed,
// most overdue first.
func (s *Scorer) GetDueForReview(ctx context.Context, learnerID uuid.UUID, limit int) ([]*store.MasteryRecord, error) {
	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: learner id is empty", ErrInvalidInput)
	}
	return s.records.DueForReview(ctx, learnerID, s.now(), limit)
}

// GetWeakConcepts returns records below the weak threshold, weakest first.
func (s *Scorer) GetWeakConcepts(ctx context.Context, learnerID uuid.UUID, limit int) ([]*store.MasteryRecord, error) {
	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: learner id is empty", ErrInvalidInput)
	}
	return s.records.WeakConcepts(ctx, learnerID, s.cfg.WeakThreshold, limit)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
