package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexloop/lexloop/internal/logger"
)

// MasteryRepo is the data-access layer for mastery records. Pure persistence:
// all scoring policy lives in the mastery package.
type MasteryRepo interface {
	// Get returns the record for (learnerID, conceptID), or nil if none exists.
	Get(ctx context.Context, learnerID uuid.UUID, conceptID string) (*MasteryRecord, error)

	// Upsert writes the record, overwriting an existing row for the same
	// (learnerID, conceptID) pair.
	Upsert(ctx context.Context, rec *MasteryRecord) error

	// DueForReview returns records with next_review_at <= now, most overdue
	// first, capped at limit.
	DueForReview(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]*MasteryRecord, error)

	// WeakConcepts returns records with mastery_score below threshold,
	// weakest first, capped at limit.
	WeakConcepts(ctx context.Context, learnerID uuid.UUID, threshold float64, limit int) ([]*MasteryRecord, error)

	// ByLearner returns all records for a learner.
	ByLearner(ctx context.Context, learnerID uuid.UUID) ([]*MasteryRecord, error)

	// PruneStale deletes records that never accumulated an exposure and have
	// not been touched since cutoff. Returns the number of rows removed.
	PruneStale(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteByLearner removes every record for a learner. Returns the
	// number of rows removed.
	DeleteByLearner(ctx context.Context, learnerID uuid.UUID) (int64, error)
}

type masteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewMasteryRepo creates a MasteryRepo backed by the store.
func NewMasteryRepo(db *gorm.DB, baseLog *logger.Logger) MasteryRepo {
	return &masteryRepo{db: db, log: baseLog.With("repo", "mastery")}
}

func (r *masteryRepo) Get(ctx context.Context, learnerID uuid.UUID, conceptID string) (*MasteryRecord, error) {
	var rec MasteryRecord
	err := r.db.WithContext(ctx).
		Where("learner_id = ? AND concept_id = ?", learnerID, conceptID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mastery record: %w", err)
	}
	return &rec, nil
}

func (r *masteryRepo) Upsert(ctx context.Context, rec *MasteryRecord) error {
	// Always insert under a fresh ID so the only possible conflict is the
	// (learner_id, concept_id) unique index the clause resolves. On the
	// update path the existing row keeps its original ID.
	rec.ID = uuid.New()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}, {Name: "concept_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"exposure_count", "correct_count", "incorrect_count",
				"mastery_score", "confidence_tier", "next_review_at",
				"last_exposure_at", "last_correct_at",
				"avg_response_time_ms", "fastest_response_time_ms",
				"last_outcome_streak", "updated_at",
			}),
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("upsert mastery record: %w", err)
	}
	return nil
}

func (r *masteryRepo) DueForReview(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]*MasteryRecord, error) {
	var recs []*MasteryRecord
	q := r.db.WithContext(ctx).
		Where("learner_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?", learnerID, now).
		Order("next_review_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query due records: %w", err)
	}
	return recs, nil
}

func (r *masteryRepo) WeakConcepts(ctx context.Context, learnerID uuid.UUID, threshold float64, limit int) ([]*MasteryRecord, error) {
	var recs []*MasteryRecord
	q := r.db.WithContext(ctx).
		Where("learner_id = ? AND exposure_count > 0 AND mastery_score < ?", learnerID, threshold).
		Order("mastery_score ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query weak records: %w", err)
	}
	return recs, nil
}

func (r *masteryRepo) ByLearner(ctx context.Context, learnerID uuid.UUID) ([]*MasteryRecord, error) {
	var recs []*MasteryRecord
	err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("concept_id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query learner records: %w", err)
	}
	return recs, nil
}

func (r *masteryRepo) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("exposure_count = 0 AND updated_at < ?", cutoff).
		Delete(&MasteryRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune stale records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *masteryRepo) DeleteByLearner(ctx context.Context, learnerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Delete(&MasteryRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete learner records: %w", res.Error)
	}
	return res.RowsAffected, nil
}
