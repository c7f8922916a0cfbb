package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		LogMode:      "production",
		CacheBackend: "store",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"store backend", func(c *Config) {}, false},
		{"redis with addr", func(c *Config) {
			c.CacheBackend = "redis"
			c.RedisAddr = "localhost:6379"
		}, false},
		{"redis without addr", func(c *Config) {
			c.CacheBackend = "redis"
		}, true},
		{"unknown backend", func(c *Config) {
			c.CacheBackend = "memcached"
		}, true},
		{"development log mode", func(c *Config) {
			c.LogMode = "development"
		}, false},
		{"unknown log mode", func(c *Config) {
			c.LogMode = "verbose"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEXLOOP_LOG_MODE", "development")
	t.Setenv("LEXLOOP_CACHE_TTL", "2h")
	t.Setenv("LEXLOOP_CACHE_MAX_ENTRIES", "42")
	t.Setenv("LEXLOOP_BATCH_SIZE", "3")
	t.Setenv("LEXLOOP_SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogMode != "development" {
		t.Fatalf("expected development log mode, got %q", cfg.LogMode)
	}
	if cfg.Cache.DefaultTTL != 2*time.Hour {
		t.Fatalf("expected 2h cache TTL, got %v", cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.MaxEntries != 42 {
		t.Fatalf("expected 42 max entries, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Sweep.MaxCacheEntries != 42 {
		t.Fatalf("expected sweep limit to follow cache limit, got %d", cfg.Sweep.MaxCacheEntries)
	}
	if cfg.Content.BatchSize != 3 {
		t.Fatalf("expected batch size 3, got %d", cfg.Content.BatchSize)
	}
	if cfg.Sweep.Interval != 15*time.Minute {
		t.Fatalf("expected 15m sweep interval, got %v", cfg.Sweep.Interval)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("LEXLOOP_GEN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheBackend != "store" {
		t.Fatalf("expected store backend by default, got %q", cfg.CacheBackend)
	}
	if cfg.DSN == "" {
		t.Fatal("expected a default DSN")
	}
}
