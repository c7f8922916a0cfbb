package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexloop/lexloop/internal/logger"
)

// ConceptRepo is the data-access layer for the concept catalog.
type ConceptRepo interface {
	// Get returns the concept with id, or nil if none exists.
	Get(ctx context.Context, id string) (*Concept, error)

	// Seed upserts catalog entries. Existing confidence values are preserved.
	Seed(ctx context.Context, concepts []*Concept) error

	// All returns the full catalog ordered by id.
	All(ctx context.Context) ([]*Concept, error)

	// UnattemptedByLearner returns catalog concepts the learner has never
	// answered, ordered by id, capped at limit.
	UnattemptedByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]*Concept, error)

	// UpdateConfidence sets the generation confidence for a concept.
	UpdateConfidence(ctx context.Context, id string, confidence float64) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewConceptRepo creates a ConceptRepo backed by the store.
func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "concept")}
}

func (r *conceptRepo) Get(ctx context.Context, id string) (*Concept, error) {
	var c Concept
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get concept: %w", err)
	}
	return &c, nil
}

func (r *conceptRepo) Seed(ctx context.Context, concepts []*Concept) error {
	if len(concepts) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"term", "topic", "level", "updated_at"}),
		}).
		Create(concepts).Error
	if err != nil {
		return fmt.Errorf("seed concepts: %w", err)
	}
	return nil
}

func (r *conceptRepo) All(ctx context.Context) ([]*Concept, error) {
	var cs []*Concept
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	return cs, nil
}

func (r *conceptRepo) UnattemptedByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]*Concept, error) {
	var cs []*Concept
	sub := r.db.Model(&ExerciseResult{}).
		Select("DISTINCT concept_id").
		Where("learner_id = ?", learnerID)
	q := r.db.WithContext(ctx).
		Where("id NOT IN (?)", sub).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("query unattempted concepts: %w", err)
	}
	return cs, nil
}

func (r *conceptRepo) UpdateConfidence(ctx context.Context, id string, confidence float64) error {
	err := r.db.WithContext(ctx).
		Model(&Concept{}).
		Where("id = ?", id).
		Update("confidence", confidence).Error
	if err != nil {
		return fmt.Errorf("update concept confidence: %w", err)
	}
	return nil
}
