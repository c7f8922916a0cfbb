package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lexloop/lexloop/internal/logger"
)

// CategoryCount is one (category, count) pair from the rejection history.
type CategoryCount struct {
	Category string
	Count    int
}

// RejectionRepo is the append/read layer for rejection events.
type RejectionRepo interface {
	// Append stores one rejection event. Events are immutable once written.
	Append(ctx context.Context, ev *RejectionEvent) error

	// CategoryCounts returns rejection counts per category for a concept,
	// highest count first.
	CategoryCounts(ctx context.Context, conceptID string) ([]CategoryCount, error)

	// ByConcept returns all rejection events for a concept, oldest first.
	ByConcept(ctx context.Context, conceptID string) ([]*RejectionEvent, error)
}

type rejectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewRejectionRepo creates a RejectionRepo backed by the store.
func NewRejectionRepo(db *gorm.DB, baseLog *logger.Logger) RejectionRepo {
	return &rejectionRepo{db: db, log: baseLog.With("repo", "rejection")}
}

func (r *rejectionRepo) Append(ctx context.Context, ev *RejectionEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("append rejection event: %w", err)
	}
	return nil
}

func (r *rejectionRepo) CategoryCounts(ctx context.Context, conceptID string) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&RejectionEvent{}).
		Select("category, COUNT(*) AS count").
		Where("concept_id = ?", conceptID).
		Group("category").
		Order("count DESC, category ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count rejections by category: %w", err)
	}
	return counts, nil
}

func (r *rejectionRepo) ByConcept(ctx context.Context, conceptID string) ([]*RejectionEvent, error) {
	var evs []*RejectionEvent
	err := r.db.WithContext(ctx).
		Where("concept_id = ?", conceptID).
		Order("created_at ASC, id ASC").
		Find(&evs).Error
	if err != nil {
		return nil, fmt.Errorf("query rejections: %w", err)
	}
	return evs, nil
}
