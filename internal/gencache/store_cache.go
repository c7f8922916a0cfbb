package gencache

import (
	"context"
	"time"

	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/policy"
	"github.com/lexloop/lexloop/internal/store"
)

// StoreCache is the relational cache backend: entries live in the
// cached_contents table with LRU eviction over last_used_at.
type StoreCache struct {
	cfg  Config
	repo store.CacheRepo
	log  *logger.Logger

	now func() time.Time
}

// NewStoreCache creates a store-backed cache.
func NewStoreCache(cfg Config, repo store.CacheRepo, baseLog *logger.Logger) *StoreCache {
	return &StoreCache{
		cfg:  cfg,
		repo: repo,
		log:  baseLog.With("component", "gencache", "backend", "store"),
		now:  time.Now,
	}
}

func (c *StoreCache) Get(ctx context.Context, p *policy.GenerationPolicy, exerciseType string) ([]byte, bool) {
	key := CacheKey(p, exerciseType)
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	entry, err := c.repo.GetByKey(ctx, key)
	if err != nil {
		// Backend trouble is a logical miss, never an error to the caller.
		c.log.Warn("cache get degraded to miss", "key", key, "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	now := c.now()
	if !entry.ExpiresAt.After(now) {
		// Expired entries behave exactly like misses; delete lazily.
		if err := c.repo.Delete(ctx, key); err != nil {
			c.log.Warn("expired cache entry delete failed", "key", key, "error", err)
		}
		return nil, false
	}

	// Refresh the entry: a hit extends life according to popularity but
	// never shortens it.
	newTTL := c.cfg.ttlFor(entry.UsageCount+1, c.cfg.isSparse(p))
	expiresAt := now.Add(newTTL)
	if expiresAt.Before(entry.ExpiresAt) {
		expiresAt = entry.ExpiresAt
	}
	if err := c.repo.Touch(ctx, key, now, expiresAt); err != nil {
		c.log.Warn("cache touch failed", "key", key, "error", err)
	}

	return entry.Payload, true
}

func (c *StoreCache) Put(ctx context.Context, p *policy.GenerationPolicy, exerciseType string, payload []byte) {
	key := CacheKey(p, exerciseType)
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	now := c.now()
	entry := &store.CachedContent{
		CacheKey:     key,
		ExerciseType: exerciseType,
		Payload:      payload,
		UsageCount:   0,
		CreatedAt:    now,
		LastUsedAt:   now,
		ExpiresAt:    now.Add(c.cfg.ttlFor(0, c.cfg.isSparse(p))),
	}

	if err := c.repo.Put(ctx, entry); err != nil {
		c.log.Warn("cache put failed", "key", key, "error", err)
		return
	}

	c.enforceLimit(ctx)
}

// enforceLimit evicts LRU entries once the table exceeds MaxEntries.
func (c *StoreCache) enforceLimit(ctx context.Context) {
	count, err := c.repo.Count(ctx)
	if err != nil {
		c.log.Warn("cache count failed", "error", err)
		return
	}
	if count <= int64(c.cfg.MaxEntries) {
		return
	}
	evicted, err := c.repo.EvictLRU(ctx, int(count-int64(c.cfg.MaxEntries)))
	if err != nil {
		c.log.Warn("cache LRU eviction failed", "error", err)
		return
	}
	c.log.Info("cache LRU eviction", "evicted", evicted)
}
