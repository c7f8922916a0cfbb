package gencache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/policy"
)

const redisKeyPrefix = "lexloop:gencache:"

// RedisCache is the shared cache backend for multi-instance deployments.
// TTL handling uses native Redis expiry; capacity eviction is left to the
// server's maxmemory policy (allkeys-lru recommended), so MaxEntries is
// not enforced here.
type RedisCache struct {
	cfg Config
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedisCache connects to Redis at addr and verifies the connection.
func NewRedisCache(cfg Config, addr string, baseLog *logger.Logger) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{
		cfg: cfg,
		rdb: rdb,
		log: baseLog.With("component", "gencache", "backend", "redis"),
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, p *policy.GenerationPolicy, exerciseType string) ([]byte, bool) {
	key := redisKeyPrefix + CacheKey(p, exerciseType)
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache get degraded to miss", "key", key, "error", err)
		return nil, false
	}

	// Track usage and extend the TTL for popular keys. Best-effort; a
	// failure here doesn't invalidate the hit.
	usage, err := c.rdb.Incr(ctx, key+":usage").Result()
	if err != nil {
		usage = 0
	}
	ttl := c.cfg.ttlFor(int(usage), c.cfg.isSparse(p))
	pipe := c.rdb.Pipeline()
	pipe.Expire(ctx, key, ttl)
	pipe.Expire(ctx, key+":usage", ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("cache ttl refresh failed", "key", key, "error", err)
	}

	return payload, true
}

func (c *RedisCache) Put(ctx context.Context, p *policy.GenerationPolicy, exerciseType string, payload []byte) {
	key := redisKeyPrefix + CacheKey(p, exerciseType)
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	ttl := c.cfg.ttlFor(0, c.cfg.isSparse(p))
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.log.Warn("cache put failed", "key", key, "error", err)
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
