package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexloop/lexloop/internal/logger"
)

// CacheRepo is the persistence layer for generated-content cache entries.
// TTL and eviction policy live in the gencache package; this layer only
// moves rows.
type CacheRepo interface {
	// GetByKey returns the entry for key, or nil if none exists.
	// Expiry is NOT checked here.
	GetByKey(ctx context.Context, key string) (*CachedContent, error)

	// Put writes the entry, overwriting an existing row with the same key.
	Put(ctx context.Context, entry *CachedContent) error

	// Touch increments usage_count and updates last_used_at/expires_at
	// for the entry with key.
	Touch(ctx context.Context, key string, usedAt, expiresAt time.Time) error

	// Delete removes the entry with key, if present.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes entries past their expiry. Returns rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// EvictLRU removes the n least-recently-used entries. Returns rows removed.
	EvictLRU(ctx context.Context, n int) (int64, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)
}

type cacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewCacheRepo creates a CacheRepo backed by the store.
func NewCacheRepo(db *gorm.DB, baseLog *logger.Logger) CacheRepo {
	return &cacheRepo{db: db, log: baseLog.With("repo", "cache")}
}

func (r *cacheRepo) GetByKey(ctx context.Context, key string) (*CachedContent, error) {
	var entry CachedContent
	err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	return &entry, nil
}

func (r *cacheRepo) Put(ctx context.Context, entry *CachedContent) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"exercise_type", "payload", "usage_count",
				"created_at", "last_used_at", "expires_at",
			}),
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (r *cacheRepo) Touch(ctx context.Context, key string, usedAt, expiresAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&CachedContent{}).
		Where("cache_key = ?", key).
		Updates(map[string]any{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": usedAt,
			"expires_at":   expiresAt,
		}).Error
	if err != nil {
		return fmt.Errorf("touch cache entry: %w", err)
	}
	return nil
}

func (r *cacheRepo) Delete(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&CachedContent{}).Error
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (r *cacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&CachedContent{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *cacheRepo) EvictLRU(ctx context.Context, n int) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&CachedContent{}).
		Order("last_used_at ASC").
		Limit(n).
		Pluck("cache_key", &keys).Error
	if err != nil {
		return 0, fmt.Errorf("select LRU cache entries: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("cache_key IN ?", keys).Delete(&CachedContent{})
	if res.Error != nil {
		return 0, fmt.Errorf("evict LRU cache entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *cacheRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&CachedContent{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}
