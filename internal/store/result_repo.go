package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexloop/lexloop/internal/logger"
)

// ConceptAggregate summarizes a learner's history for one concept.
type ConceptAggregate struct {
	ConceptID string
	Attempts  int
	Correct   int
}

// Accuracy returns correct/attempts, or 0 when there are no attempts.
func (a ConceptAggregate) Accuracy() float64 {
	if a.Attempts == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Attempts)
}

// LearnerTotals summarizes a learner's full history.
type LearnerTotals struct {
	Attempts int
	Correct  int
}

// Accuracy returns correct/attempts, or 0 when there are no attempts.
func (t LearnerTotals) Accuracy() float64 {
	if t.Attempts == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Attempts)
}

// ResultRepo is the append/read layer for exercise results.
type ResultRepo interface {
	// Append stores one result event. Events are immutable once written.
	Append(ctx context.Context, res *ExerciseResult) error

	// RecentByLearner returns the learner's most recent results,
	// newest first, capped at limit.
	RecentByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]*ExerciseResult, error)

	// ConceptAggregates returns per-concept attempt/correct totals for
	// a learner across the full history.
	ConceptAggregates(ctx context.Context, learnerID uuid.UUID) ([]ConceptAggregate, error)

	// Totals returns the learner's overall attempt/correct totals.
	Totals(ctx context.Context, learnerID uuid.UUID) (LearnerTotals, error)

	// DeleteByLearner removes the learner's full history. Returns the
	// number of rows removed.
	DeleteByLearner(ctx context.Context, learnerID uuid.UUID) (int64, error)
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewResultRepo creates a ResultRepo backed by the store.
func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	return &resultRepo{db: db, log: baseLog.With("repo", "result")}
}

func (r *resultRepo) Append(ctx context.Context, res *ExerciseResult) error {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return fmt.Errorf("append exercise result: %w", err)
	}
	return nil
}

func (r *resultRepo) RecentByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]*ExerciseResult, error) {
	var results []*ExerciseResult
	q := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("query recent results: %w", err)
	}
	return results, nil
}

func (r *resultRepo) ConceptAggregates(ctx context.Context, learnerID uuid.UUID) ([]ConceptAggregate, error) {
	var aggs []ConceptAggregate
	err := r.db.WithContext(ctx).
		Model(&ExerciseResult{}).
		Select("concept_id, COUNT(*) AS attempts, SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct").
		Where("learner_id = ?", learnerID).
		Group("concept_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate results by concept: %w", err)
	}
	return aggs, nil
}

func (r *resultRepo) Totals(ctx context.Context, learnerID uuid.UUID) (LearnerTotals, error) {
	var t LearnerTotals
	err := r.db.WithContext(ctx).
		Model(&ExerciseResult{}).
		Select("COUNT(*) AS attempts, SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct").
		Where("learner_id = ?", learnerID).
		Scan(&t).Error
	if err != nil {
		return LearnerTotals{}, fmt.Errorf("aggregate learner totals: %w", err)
	}
	return t, nil
}

func (r *resultRepo) DeleteByLearner(ctx context.Context, learnerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Delete(&ExerciseResult{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete learner results: %w", res.Error)
	}
	return res.RowsAffected, nil
}
