// Package feedback closes the loop from reviewer verdicts back into
// generation: rejections decay a concept's generation confidence and
// accumulate into prompt-shaping hints; approvals recover confidence.
package feedback

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/store"
)

// Config holds the confidence drift parameters.
type Config struct {
	// RejectionPenalty is subtracted from confidence per rejection.
	RejectionPenalty float64

	// ApprovalBoost is added to confidence per approval. Smaller than
	// the penalty: trust is lost faster than it is regained.
	ApprovalBoost float64

	// ConfidenceFloor is the minimum confidence. Repeated rejections
	// never push below it.
	ConfidenceFloor float64

	// ConfidenceCeiling is the maximum confidence.
	ConfidenceCeiling float64

	// HintThreshold is the rejection count per category at which a hint
	// activates. One-off rejections produce no hints.
	HintThreshold int

	// MaxHints caps the hints returned per concept.
	MaxHints int
}

// DefaultConfig returns the standard drift parameters.
func DefaultConfig() Config {
	return Config{
		RejectionPenalty:  0.1,
		ApprovalBoost:     0.05,
		ConfidenceFloor:   0.3,
		ConfidenceCeiling: 1.0,
		HintThreshold:     2,
		MaxHints:          3,
	}
}

// ConceptPattern is the derived, in-memory view of a concept's rejection
// history. Rebuildable from durable storage at any time; never the sole
// source of truth.
type ConceptPattern struct {
	ConceptID         string
	AverageConfidence float64
	RejectionCounts   map[Category]int
	LastUpdated       time.Time
}

// Learner consumes rejection/approval events and produces prompt-shaping
// hints. Patterns are kept in a process-scoped read-through cache with
// per-key locking; the durable state lives on the concept row and in the
// append-only rejection events.
type Learner struct {
	cfg        Config
	rejections store.RejectionRepo
	concepts   store.ConceptRepo
	log        *logger.Logger

	mu       sync.Mutex
	patterns map[string]*ConceptPattern

	now func() time.Time
}

// NewLearner creates a Learner.
func NewLearner(cfg Config, rejections store.RejectionRepo, concepts store.ConceptRepo, baseLog *logger.Logger) *Learner {
	return &Learner{
		cfg:        cfg,
		rejections: rejections,
		concepts:   concepts,
		log:        baseLog.With("component", "feedback"),
		patterns:   make(map[string]*ConceptPattern),
		now:        time.Now,
	}
}

// ApplyRejection records a rejection: the event is appended durably, the
// concept's generation confidence is decayed (floored), and the in-memory
// pattern is refreshed.
func (l *Learner) ApplyRejection(ctx context.Context, conceptID string, category Category, note string, reviewerID uuid.UUID) error {
	if conceptID == "" {
		return fmt.Errorf("concept id is empty")
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return err
	}

	if err := l.rejections.Append(ctx, &store.RejectionEvent{
		ConceptID:  conceptID,
		Category:   string(category),
		Note:       note,
		ReviewerID: reviewerID,
		CreatedAt:  l.now(),
	}); err != nil {
		return err
	}

	p, err := l.pattern(ctx, conceptID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	p.RejectionCounts[category]++
	p.AverageConfidence -= l.cfg.RejectionPenalty
	if p.AverageConfidence < l.cfg.ConfidenceFloor {
		p.AverageConfidence = l.cfg.ConfidenceFloor
	}
	p.LastUpdated = l.now()
	confidence := p.AverageConfidence
	l.mu.Unlock()

	if err := l.concepts.UpdateConfidence(ctx, conceptID, confidence); err != nil {
		return err
	}

	l.log.Info("rejection applied",
		"concept_id", conceptID, "category", category, "confidence", confidence)
	return nil
}

// ApplyApproval records an approval, recovering confidence toward the
// ceiling by a smaller step than the rejection penalty.
func (l *Learner) ApplyApproval(ctx context.Context, conceptID string) error {
	if conceptID == "" {
		return fmt.Errorf("concept id is empty")
	}

	p, err := l.pattern(ctx, conceptID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	p.AverageConfidence += l.cfg.ApprovalBoost
	if p.AverageConfidence > l.cfg.ConfidenceCeiling {
		p.AverageConfidence = l.cfg.ConfidenceCeiling
	}
	p.LastUpdated = l.now()
	confidence := p.AverageConfidence
	l.mu.Unlock()

	return l.concepts.UpdateConfidence(ctx, conceptID, confidence)
}

// EnhancementHints returns the prompt cautions for a concept: one per
// category whose rejection count reached the threshold, highest count
// first, capped at MaxHints.
func (l *Learner) EnhancementHints(ctx context.Context, conceptID string) ([]string, error) {
	p, err := l.pattern(ctx, conceptID)
	if err != nil {
		return nil, err
	}

	type catCount struct {
		cat   Category
		count int
	}

	l.mu.Lock()
	var active []catCount
	for cat, n := range p.RejectionCounts {
		if n >= l.cfg.HintThreshold {
			active = append(active, catCount{cat, n})
		}
	}
	l.mu.Unlock()

	sort.Slice(active, func(i, j int) bool {
		if active[i].count != active[j].count {
			return active[i].count > active[j].count
		}
		return active[i].cat < active[j].cat
	})
	if len(active) > l.cfg.MaxHints {
		active = active[:l.cfg.MaxHints]
	}

	hints := make([]string, 0, len(active))
	for _, a := range active {
		hints = append(hints, fmt.Sprintf("%s: rejected %d times for %s — %s",
			conceptID, a.count, a.cat, hintGuidance[a.cat]))
	}
	return hints, nil
}

// Confidence returns the concept's current generation confidence.
func (l *Learner) Confidence(ctx context.Context, conceptID string) (float64, error) {
	p, err := l.pattern(ctx, conceptID)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return p.AverageConfidence, nil
}

// pattern returns the in-memory pattern for conceptID, rebuilding it from
// durable storage on first access.
func (l *Learner) pattern(ctx context.Context, conceptID string) (*ConceptPattern, error) {
	l.mu.Lock()
	if p, ok := l.patterns[conceptID]; ok {
		l.mu.Unlock()
		return p, nil
	}
	l.mu.Unlock()

	p, err := l.rebuild(ctx, conceptID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// A concurrent rebuild may have won; keep the first one.
	if existing, ok := l.patterns[conceptID]; ok {
		return existing, nil
	}
	l.patterns[conceptID] = p
	return p, nil
}

// rebuild reconstructs a pattern from the concept row and the rejection
// event history.
func (l *Learner) rebuild(ctx context.Context, conceptID string) (*ConceptPattern, error) {
	p := &ConceptPattern{
		ConceptID:         conceptID,
		AverageConfidence: defaultConfidence,
		RejectionCounts:   make(map[Category]int),
		LastUpdated:       l.now(),
	}

	concept, err := l.concepts.Get(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("rebuild pattern: %w", err)
	}
	if concept != nil {
		p.AverageConfidence = concept.Confidence
	}

	counts, err := l.rejections.CategoryCounts(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("rebuild pattern: %w", err)
	}
	for _, c := range counts {
		p.RejectionCounts[Category(c.Category)] = c.Count
	}

	return p, nil
}

// defaultConfidence is the starting confidence for a concept with no
// catalog row and no history.
const defaultConfidence = 0.7
