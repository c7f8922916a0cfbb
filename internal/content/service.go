package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/feedback"
	"github.com/lexloop/lexloop/internal/gencache"
	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/policy"
)

// ErrGenerationFailed is returned when the provider cannot produce a
// valid batch and no cached content is available. The cache is left
// unmodified in that case.
var ErrGenerationFailed = errors.New("exercise generation failed")

// Result is the outcome of a content request.
type Result struct {
	Batch *Batch

	// Policy is the generation policy the batch was produced (or cached)
	// under.
	Policy *policy.GenerationPolicy

	// CacheHit reports whether the batch was served from cache.
	CacheHit bool
}

// Service is the exercise delivery pipeline: policy building, hint
// merging, cache lookup, generation, and cache population.
type Service struct {
	cfg       Config
	builder   *policy.Builder
	hints     *feedback.Learner
	cache     gencache.Cache
	generator Generator
	log       *logger.Logger

	// recent tracks prompts served per learner for prompt-level dedup.
	// Process-local; a restart simply forgets the history.
	mu     sync.Mutex
	recent map[uuid.UUID][]string
}

func NewService(cfg Config, builder *policy.Builder, hints *feedback.Learner, cache gencache.Cache, gen Generator, baseLog *logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		builder:   builder,
		hints:     hints,
		cache:     cache,
		generator: gen,
		log:       baseLog.With("component", "content"),
		recent:    make(map[uuid.UUID][]string),
	}
}

// RequestContent serves a batch of exercises for the learner. The
// generation policy is rebuilt from current history on every call, so a
// learner whose profile shifted since the last request gets content for
// the profile they have now, not the one they had then.
func (s *Service) RequestContent(ctx context.Context, learnerID uuid.UUID, exerciseType ExerciseType) (*Result, error) {
	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("learner id is empty")
	}
	if _, ok := ParseExerciseType(string(exerciseType)); !ok {
		return nil, fmt.Errorf("unknown exercise type %q", exerciseType)
	}

	pol, err := s.builder.BuildContext(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("build policy: %w", err)
	}
	s.mergeHints(ctx, pol)

	if payload, ok := s.cache.Get(ctx, pol, string(exerciseType)); ok {
		var batch Batch
		if err := json.Unmarshal(payload, &batch); err == nil {
			s.log.Debug("served from cache", "learner_id", learnerID, "exercise_type", exerciseType)
			return &Result{Batch: &batch, Policy: pol, CacheHit: true}, nil
		}
		s.log.Warn("cached payload unreadable, regenerating", "learner_id", learnerID, "error", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenTimeout)
	defer cancel()

	batch, err := s.generator.Generate(genCtx, GenerateInput{
		Policy:       pol,
		ExerciseType: exerciseType,
		PriorPrompts: s.priorPrompts(learnerID),
	})
	if err != nil {
		s.log.Error("generation failed", "learner_id", learnerID, "exercise_type", exerciseType, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if payload, err := json.Marshal(batch); err == nil {
		s.cache.Put(ctx, pol, string(exerciseType), payload)
	}
	s.remember(learnerID, batch)

	return &Result{Batch: batch, Policy: pol, CacheHit: false}, nil
}

// mergeHints appends enhancement hints for every concept the policy
// targets. Hint lookup failures are logged and skipped; a missing hint
// degrades generation quality, it doesn't block delivery.
func (s *Service) mergeHints(ctx context.Context, pol *policy.GenerationPolicy) {
	for _, id := range append(append([]string{}, pol.WeakConcepts...), pol.NewConcepts...) {
		hints, err := s.hints.EnhancementHints(ctx, id)
		if err != nil {
			s.log.Warn("hint lookup failed", "concept_id", id, "error", err)
			continue
		}
		pol.Hints = append(pol.Hints, hints...)
	}
}

func (s *Service) priorPrompts(learnerID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.recent[learnerID]
	out := make([]string, len(prior))
	copy(out, prior)
	return out
}

func (s *Service) remember(learnerID uuid.UUID, batch *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompts := s.recent[learnerID]
	for _, ex := range batch.Exercises {
		prompts = append(prompts, ex.Prompt)
	}
	if max := s.cfg.MaxPriorPrompts; max > 0 && len(prompts) > max {
		prompts = prompts[len(prompts)-max:]
	}
	s.recent[learnerID] = prompts
}
