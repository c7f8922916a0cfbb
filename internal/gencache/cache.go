// Package gencache caches generated content keyed by a deterministic hash
// of the generation policy. The cache is an optimization layer, never a
// correctness dependency: a failing backend reads as a miss and writes
// are best-effort.
package gencache

import (
	"context"
	"time"

	"github.com/lexloop/lexloop/internal/policy"
)

// Cache is the generation-content cache consumed by the content service.
//
// Get returns (payload, true) on a fresh hit and (nil, false) otherwise —
// including on backend failure. A hit is an observable write: it bumps
// the entry's usage count and last-used time.
//
// Put stores the payload under the policy's key. Failures are logged and
// swallowed; callers never see them.
type Cache interface {
	Get(ctx context.Context, p *policy.GenerationPolicy, exerciseType string) ([]byte, bool)
	Put(ctx context.Context, p *policy.GenerationPolicy, exerciseType string, payload []byte)
}

// Config holds cache tuning shared by the backends.
type Config struct {
	// DefaultTTL is the lifetime of a fresh entry.
	DefaultTTL time.Duration

	// PopularityThreshold is the usage count above which an entry's TTL
	// doubles on each hit. Popular keys stay warm.
	PopularityThreshold int

	// SparseTopicCount marks a policy sparse when its combined topic
	// lists exceed this size: wide, rare combinations get half the TTL
	// since they are unlikely to recur.
	SparseTopicCount int

	// MaxEntries bounds the store-backed cache; LRU entries are evicted
	// beyond it.
	MaxEntries int

	// OpTimeout bounds each backend call so a slow cache cannot stall
	// the request path.
	OpTimeout time.Duration
}

// DefaultConfig returns the standard cache tuning.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:          24 * time.Hour,
		PopularityThreshold: 5,
		SparseTopicCount:    15,
		MaxEntries:          10_000,
		OpTimeout:           2 * time.Second,
	}
}

// ttlFor computes an entry's TTL from its usage count and sparseness.
// Monotonic: more usage never shortens the TTL.
func (c Config) ttlFor(usageCount int, sparse bool) time.Duration {
	ttl := c.DefaultTTL
	if sparse {
		ttl /= 2
	}
	if usageCount > c.PopularityThreshold {
		ttl *= 2
	}
	return ttl
}

// isSparse reports whether the policy's topic combination is wide enough
// to be unlikely to recur.
func (c Config) isSparse(p *policy.GenerationPolicy) bool {
	return len(p.WeakConcepts)+len(p.MasteredConcepts)+len(p.NewConcepts) > c.SparseTopicCount
}
