// Package store is the persistence layer: gorm models and the
// repositories the rest of the engine reads and writes through.
package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MasteryRecord is the per-(learner, concept) mastery state. One row per
// pair; every exposure rewrites it through the mastery package.
type MasteryRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_concept"`
	ConceptID string    `gorm:"not null;uniqueIndex:idx_learner_concept"`

	ExposureCount  int `gorm:"not null;default:0"`
	CorrectCount   int `gorm:"not null;default:0"`
	IncorrectCount int `gorm:"not null;default:0"`

	// LastOutcomeStreak is the signed run of identical outcomes: positive
	// for consecutive correct answers, negative for consecutive misses.
	LastOutcomeStreak int `gorm:"not null;default:0"`

	MasteryScore   float64 `gorm:"not null;default:0"`
	ConfidenceTier int     `gorm:"not null;default:1"`

	NextReviewAt   *time.Time `gorm:"index"`
	LastExposureAt *time.Time
	LastCorrectAt  *time.Time

	AvgResponseTimeMs     float64 `gorm:"not null;default:0"`
	FastestResponseTimeMs int     `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns the row ID when the caller didn't.
func (r *MasteryRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Accuracy returns correct/exposures, or 0 when there is no history.
func (r *MasteryRecord) Accuracy() float64 {
	if r.ExposureCount == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.ExposureCount)
}

// ExerciseResult is one immutable exposure event. Append-only: the full
// history stays queryable for policy building and audits.
type ExerciseResult struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	LearnerID      uuid.UUID `gorm:"type:uuid;not null;index:idx_result_learner_time"`
	ConceptID      string    `gorm:"not null;index"`
	Correct        bool      `gorm:"not null"`
	ResponseTimeMs int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"index:idx_result_learner_time"`
}

func (r *ExerciseResult) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RejectionEvent is one immutable reviewer rejection of generated
// content for a concept.
type RejectionEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConceptID  string    `gorm:"not null;index"`
	Category   string    `gorm:"not null"`
	Note       string
	ReviewerID uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
}

func (e *RejectionEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// CachedContent is one generated batch stored under its policy hash.
type CachedContent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CacheKey     string    `gorm:"not null;uniqueIndex"`
	ExerciseType string    `gorm:"not null"`
	Payload      []byte    `gorm:"not null"`
	UsageCount   int       `gorm:"not null;default:0"`
	CreatedAt    time.Time
	LastUsedAt   time.Time `gorm:"index"`
	ExpiresAt    time.Time `gorm:"index"`
}

func (c *CachedContent) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Concept is one catalog entry: a vocabulary item content can be
// generated for. Confidence is the reviewer-driven generation confidence
// maintained by the feedback package.
type Concept struct {
	ID         string `gorm:"primaryKey"`
	Term       string `gorm:"not null"`
	Topic      string `gorm:"index"`
	Level      string
	Confidence float64 `gorm:"not null;default:0.7"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AllModels lists every model for auto-migration.
func AllModels() []any {
	return []any{
		&MasteryRecord{},
		&ExerciseResult{},
		&RejectionEvent{},
		&CachedContent{},
		&Concept{},
	}
}
