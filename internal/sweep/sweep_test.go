package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/store"
)

type fakeCacheRepo struct {
	count        int64
	countErr     error
	expired      int64
	expiredErr   error
	evictedWith  int
	evictCalled  bool
	deleteCalled bool
}

func (f *fakeCacheRepo) GetByKey(ctx context.Context, key string) (*store.CachedContent, error) {
	return nil, nil
}

func (f *fakeCacheRepo) Put(ctx context.Context, entry *store.CachedContent) error { return nil }

func (f *fakeCacheRepo) Touch(ctx context.Context, key string, usedAt, expiresAt time.Time) error {
	return nil
}

func (f *fakeCacheRepo) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.deleteCalled = true
	return f.expired, f.expiredErr
}

func (f *fakeCacheRepo) EvictLRU(ctx context.Context, n int) (int64, error) {
	f.evictCalled = true
	f.evictedWith = n
	return int64(n), nil
}

func (f *fakeCacheRepo) Count(ctx context.Context) (int64, error) {
	return f.count, f.countErr
}

type fakeMasteryRepo struct {
	pruneCutoff time.Time
	pruneErr    error
	pruneCalled bool
}

func (f *fakeMasteryRepo) Get(ctx context.Context, learnerID uuid.UUID, conceptID string) (*store.MasteryRecord, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) Upsert(ctx context.Context, rec *store.MasteryRecord) error { return nil }

func (f *fakeMasteryRepo) DueForReview(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]*store.MasteryRecord, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) WeakConcepts(ctx context.Context, learnerID uuid.UUID, threshold float64, limit int) ([]*store.MasteryRecord, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) ByLearner(ctx context.Context, learnerID uuid.UUID) ([]*store.MasteryRecord, error) {
	return nil, nil
}

func (f *fakeMasteryRepo) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	f.pruneCalled = true
	f.pruneCutoff = cutoff
	return 0, f.pruneErr
}

func (f *fakeMasteryRepo) DeleteByLearner(ctx context.Context, learnerID uuid.UUID) (int64, error) {
	return 0, nil
}

func TestRunOnce_EvictsOverflow(t *testing.T) {
	cache := &fakeCacheRepo{count: 120}
	mastery := &fakeMasteryRepo{}
	cfg := DefaultConfig()
	cfg.MaxCacheEntries = 100

	New(cfg, cache, mastery, logger.Nop()).RunOnce()

	if !cache.deleteCalled {
		t.Fatal("expected DeleteExpired to run")
	}
	if !cache.evictCalled {
		t.Fatal("expected LRU eviction for overflowing cache")
	}
	if cache.evictedWith != 20 {
		t.Fatalf("expected eviction of 20 entries, got %d", cache.evictedWith)
	}
	if !mastery.pruneCalled {
		t.Fatal("expected stale mastery prune to run")
	}
}

func TestRunOnce_UnderLimitSkipsEviction(t *testing.T) {
	cache := &fakeCacheRepo{count: 50}
	cfg := DefaultConfig()
	cfg.MaxCacheEntries = 100

	New(cfg, cache, &fakeMasteryRepo{}, logger.Nop()).RunOnce()

	if cache.evictCalled {
		t.Fatal("eviction should not run under the limit")
	}
}

func TestRunOnce_ZeroLimitDisablesSizeCheck(t *testing.T) {
	cache := &fakeCacheRepo{count: 10000}
	cfg := DefaultConfig()
	cfg.MaxCacheEntries = 0

	New(cfg, cache, &fakeMasteryRepo{}, logger.Nop()).RunOnce()

	if cache.evictCalled {
		t.Fatal("size check should be disabled when the limit is 0")
	}
}

func TestRunOnce_FailuresDoNotAbort(t *testing.T) {
	cache := &fakeCacheRepo{expiredErr: errors.New("boom"), countErr: errors.New("boom")}
	mastery := &fakeMasteryRepo{pruneErr: errors.New("boom")}

	// All three jobs fail; RunOnce must still complete without panicking
	// and must attempt every job.
	New(DefaultConfig(), cache, mastery, logger.Nop()).RunOnce()

	if !cache.deleteCalled || !mastery.pruneCalled {
		t.Fatal("expected every sweep job to be attempted")
	}
}

func TestRunOnce_StaleCutoff(t *testing.T) {
	mastery := &fakeMasteryRepo{}
	cfg := DefaultConfig()
	cfg.StaleAfter = 48 * time.Hour

	before := time.Now().UTC()
	New(cfg, &fakeCacheRepo{}, mastery, logger.Nop()).RunOnce()
	after := time.Now().UTC()

	lo := before.Add(-cfg.StaleAfter)
	hi := after.Add(-cfg.StaleAfter)
	if mastery.pruneCutoff.Before(lo) || mastery.pruneCutoff.After(hi) {
		t.Fatalf("cutoff %v outside expected window [%v, %v]", mastery.pruneCutoff, lo, hi)
	}
}
