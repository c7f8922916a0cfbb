// Package config assembles the engine configuration from defaults, an
// optional .env file, and LEXLOOP_ environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lexloop/lexloop/internal/content"
	"github.com/lexloop/lexloop/internal/feedback"
	"github.com/lexloop/lexloop/internal/gencache"
	"github.com/lexloop/lexloop/internal/mastery"
	"github.com/lexloop/lexloop/internal/policy"
	"github.com/lexloop/lexloop/internal/schedule"
	"github.com/lexloop/lexloop/internal/store"
	"github.com/lexloop/lexloop/internal/sweep"
)

// Config is the full engine configuration.
type Config struct {
	// LogMode selects the logger preset: "production" or "development".
	LogMode string

	// DSN is the database connection string. A postgres:// URL or
	// key=value string selects Postgres; anything else is treated as a
	// SQLite file path.
	DSN string

	// CacheBackend selects the content cache: "store" (default) or
	// "redis".
	CacheBackend string

	// RedisAddr is the Redis address, required when CacheBackend is
	// "redis".
	RedisAddr string

	Mastery  mastery.Config
	Schedule schedule.Config
	Policy   policy.Config
	Feedback feedback.Config
	Cache    gencache.Config
	Content  content.Config
	Sweep    sweep.Config
}

// Load builds the configuration. A .env file in the working directory
// is read first when present; real environment variables win over it.
func Load() (Config, error) {
	// godotenv does not override variables that are already set.
	_ = godotenv.Load()

	dsn, err := store.DefaultDBPath()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogMode:      envOr("LEXLOOP_LOG_MODE", "production"),
		DSN:          dsn,
		CacheBackend: envOr("LEXLOOP_CACHE_BACKEND", "store"),
		RedisAddr:    os.Getenv("LEXLOOP_REDIS_ADDR"),
		Mastery:      mastery.DefaultConfig(),
		Schedule:     schedule.DefaultConfig(),
		Policy:       policy.DefaultConfig(),
		Feedback:     feedback.DefaultConfig(),
		Cache:        gencache.DefaultConfig(),
		Content:      content.DefaultConfig(),
		Sweep:        sweep.DefaultConfig(),
	}

	if d, ok, err := envDuration("LEXLOOP_CACHE_TTL"); err != nil {
		return cfg, err
	} else if ok {
		cfg.Cache.DefaultTTL = d
	}
	if n, ok, err := envInt("LEXLOOP_CACHE_MAX_ENTRIES"); err != nil {
		return cfg, err
	} else if ok {
		cfg.Cache.MaxEntries = n
		cfg.Sweep.MaxCacheEntries = n
	}
	if n, ok, err := envInt("LEXLOOP_BATCH_SIZE"); err != nil {
		return cfg, err
	} else if ok {
		cfg.Content.BatchSize = n
	}
	if d, ok, err := envDuration("LEXLOOP_GEN_TIMEOUT"); err != nil {
		return cfg, err
	} else if ok {
		cfg.Content.GenTimeout = d
	}
	if d, ok, err := envDuration("LEXLOOP_SWEEP_INTERVAL"); err != nil {
		return cfg, err
	} else if ok {
		cfg.Sweep.Interval = d
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.CacheBackend {
	case "store":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("LEXLOOP_REDIS_ADDR is required when LEXLOOP_CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	switch c.LogMode {
	case "production", "development":
	default:
		return fmt.Errorf("unknown log mode %q", c.LogMode)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) (int, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

func envDuration(key string) (time.Duration, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}
