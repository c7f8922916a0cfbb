// Package app wires the engine together: storage, mastery scoring,
// scheduling, policy building, feedback, the content cache, and the
// generation pipeline.
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/config"
	"github.com/lexloop/lexloop/internal/content"
	"github.com/lexloop/lexloop/internal/feedback"
	"github.com/lexloop/lexloop/internal/gencache"
	"github.com/lexloop/lexloop/internal/llm"
	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/mastery"
	"github.com/lexloop/lexloop/internal/policy"
	"github.com/lexloop/lexloop/internal/schedule"
	"github.com/lexloop/lexloop/internal/store"
	"github.com/lexloop/lexloop/internal/sweep"
)

// Engine is the assembled adaptive exercise engine. It owns the store
// connection and exposes the operations the CLI and any embedding
// service call.
type Engine struct {
	cfg config.Config
	log *logger.Logger

	st       *store.Store
	Mastery  store.MasteryRepo
	Results  store.ResultRepo
	Concepts store.ConceptRepo

	Scorer   *mastery.Scorer
	Builder  *policy.Builder
	Feedback *feedback.Learner
	Content  *content.Service
	Sweeper  *sweep.Sweeper

	cache   gencache.Cache
	closers []func() error
}

// Options tweaks engine assembly. The zero value is suitable for the
// CLI.
type Options struct {
	// Provider overrides LLM provider discovery. Used in tests.
	Provider llm.Provider

	// SkipProvider builds an engine without a content service. Commands
	// that only read or score do not need LLM credentials.
	SkipProvider bool
}

// New assembles an Engine from configuration.
func New(ctx context.Context, cfg config.Config, log *logger.Logger, opts Options) (*Engine, error) {
	st, err := store.Open(cfg.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &Engine{cfg: cfg, log: log, st: st}
	e.closers = append(e.closers, st.Close)

	db := st.DB()
	e.Mastery = store.NewMasteryRepo(db, log)
	e.Results = store.NewResultRepo(db, log)
	e.Concepts = store.NewConceptRepo(db, log)
	rejections := store.NewRejectionRepo(db, log)
	cacheRepo := store.NewCacheRepo(db, log)

	scheduler := schedule.New(cfg.Schedule)
	e.Scorer = mastery.NewScorer(cfg.Mastery, e.Mastery, e.Results, scheduler, log)
	e.Builder = policy.NewBuilder(cfg.Policy, e.Results, e.Concepts, log)
	e.Feedback = feedback.NewLearner(cfg.Feedback, rejections, e.Concepts, log)
	e.Sweeper = sweep.New(cfg.Sweep, cacheRepo, e.Mastery, log)

	switch cfg.CacheBackend {
	case "redis":
		rc, err := gencache.NewRedisCache(cfg.Cache, cfg.RedisAddr, log)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		e.closers = append(e.closers, rc.Close)
		e.cache = rc
	default:
		e.cache = gencache.NewStoreCache(cfg.Cache, cacheRepo, log)
	}

	provider := opts.Provider
	if provider == nil && !opts.SkipProvider {
		llmCfg, found := llm.DiscoverConfig()
		if !found {
			e.Close()
			return nil, fmt.Errorf("no LLM provider configured; set LEXLOOP_ANTHROPIC_API_KEY, LEXLOOP_OPENAI_API_KEY, LEXLOOP_GEMINI_API_KEY, or LEXLOOP_OPENROUTER_API_KEY")
		}
		provider, err = llm.NewProvider(ctx, llmCfg, log)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("build LLM provider: %w", err)
		}
	}
	if provider != nil {
		gen := content.NewGenerator(provider, cfg.Content)
		e.Content = content.NewService(cfg.Content, e.Builder, e.Feedback, e.cache, gen, log)
	}

	return e, nil
}

// Close releases every resource the engine holds, in reverse
// acquisition order.
func (e *Engine) Close() error {
	var firstErr error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecordExposure updates the mastery model with one exercise outcome.
func (e *Engine) RecordExposure(ctx context.Context, learnerID uuid.UUID, conceptID string, correct bool, responseTimeMs int) (*store.MasteryRecord, error) {
	return e.Scorer.RecordExposure(ctx, learnerID, conceptID, correct, responseTimeMs)
}

// DueForReview lists the learner's concepts whose review date has
// arrived, soonest first.
func (e *Engine) DueForReview(ctx context.Context, learnerID uuid.UUID, limit int) ([]*store.MasteryRecord, error) {
	return e.Scorer.GetDueForReview(ctx, learnerID, limit)
}

// WeakConcepts lists the learner's weakest concepts, lowest mastery
// first.
func (e *Engine) WeakConcepts(ctx context.Context, learnerID uuid.UUID, limit int) ([]*store.MasteryRecord, error) {
	return e.Scorer.GetWeakConcepts(ctx, learnerID, limit)
}

// RequestContent serves a batch of exercises for the learner, from
// cache when the learner's current policy has been generated before.
func (e *Engine) RequestContent(ctx context.Context, learnerID uuid.UUID, exerciseType content.ExerciseType) (*content.Result, error) {
	if e.Content == nil {
		return nil, fmt.Errorf("content service unavailable: no LLM provider configured")
	}
	return e.Content.RequestContent(ctx, learnerID, exerciseType)
}

// RecordRejection feeds a reviewer rejection back into the concept's
// generation confidence.
func (e *Engine) RecordRejection(ctx context.Context, conceptID string, category feedback.Category, note string, reviewerID uuid.UUID) error {
	return e.Feedback.ApplyRejection(ctx, conceptID, category, note, reviewerID)
}

// RecordApproval nudges the concept's generation confidence back up.
func (e *Engine) RecordApproval(ctx context.Context, conceptID string) error {
	return e.Feedback.ApplyApproval(ctx, conceptID)
}

// ResetLearner wipes the learner's mastery records and result history.
// Returns the total number of rows removed.
func (e *Engine) ResetLearner(ctx context.Context, learnerID uuid.UUID) (int64, error) {
	results, err := e.Results.DeleteByLearner(ctx, learnerID)
	if err != nil {
		return 0, err
	}
	records, err := e.Mastery.DeleteByLearner(ctx, learnerID)
	if err != nil {
		return results, err
	}
	e.log.Info("learner reset", "learner_id", learnerID, "results", results, "records", records)
	return results + records, nil
}
