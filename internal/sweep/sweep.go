// Package sweep runs the periodic maintenance jobs: expired cache
// eviction, cache size enforcement, and pruning of mastery rows that
// never saw an exposure.
package sweep

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lexloop/lexloop/internal/gencache"
	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/store"
)

// Config controls sweep cadence and retention.
type Config struct {
	// Interval is how often the sweep jobs run.
	Interval time.Duration

	// StaleAfter is the age past which a mastery record with zero
	// exposures is pruned.
	StaleAfter time.Duration

	// MaxCacheEntries bounds the store-backed cache. 0 disables the
	// size check.
	MaxCacheEntries int

	// OpTimeout bounds each individual sweep operation.
	OpTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:        time.Hour,
		StaleAfter:      30 * 24 * time.Hour,
		MaxCacheEntries: gencache.DefaultConfig().MaxEntries,
		OpTimeout:       30 * time.Second,
	}
}

// Sweeper owns the background maintenance schedule.
type Sweeper struct {
	cfg       Config
	scheduler *gocron.Scheduler
	cache     store.CacheRepo
	mastery   store.MasteryRepo
	log       *logger.Logger
}

func New(cfg Config, cache store.CacheRepo, mastery store.MasteryRepo, baseLog *logger.Logger) *Sweeper {
	return &Sweeper{
		cfg:       cfg,
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     cache,
		mastery:   mastery,
		log:       baseLog.With("component", "sweep"),
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.cfg.Interval).Do(s.RunOnce); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("sweeper started", "interval", s.cfg.Interval)
	return nil
}

// Stop halts the scheduler. Jobs in flight finish.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// RunOnce executes every maintenance job a single time. Also used by
// the sweep CLI command for manual runs.
func (s *Sweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OpTimeout)
	defer cancel()

	now := time.Now().UTC()

	expired, err := s.cache.DeleteExpired(ctx, now)
	if err != nil {
		s.log.Warn("expired cache sweep failed", "error", err)
	} else if expired > 0 {
		s.log.Info("evicted expired cache entries", "count", expired)
	}

	if s.cfg.MaxCacheEntries > 0 {
		count, err := s.cache.Count(ctx)
		if err != nil {
			s.log.Warn("cache count failed", "error", err)
		} else if over := count - int64(s.cfg.MaxCacheEntries); over > 0 {
			evicted, err := s.cache.EvictLRU(ctx, int(over))
			if err != nil {
				s.log.Warn("cache LRU eviction failed", "error", err)
			} else {
				s.log.Info("evicted cache entries over limit", "count", evicted)
			}
		}
	}

	pruned, err := s.mastery.PruneStale(ctx, now.Add(-s.cfg.StaleAfter))
	if err != nil {
		s.log.Warn("stale mastery prune failed", "error", err)
	} else if pruned > 0 {
		s.log.Info("pruned stale mastery records", "count", pruned)
	}
}
