package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lexloop/lexloop/internal/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestMasteryRepo_UpsertAndGet(t *testing.T) {
	st := openTestStore(t)
	repo := NewMasteryRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	learnerID := uuid.New()

	rec, err := repo.Get(ctx, learnerID, "de:haus")
	require.NoError(t, err)
	require.Nil(t, rec, "missing record reads as nil, not an error")

	now := time.Now().UTC().Truncate(time.Second)
	next := now.Add(24 * time.Hour)
	require.NoError(t, repo.Upsert(ctx, &MasteryRecord{
		LearnerID:     learnerID,
		ConceptID:     "de:haus",
		ExposureCount: 1,
		CorrectCount:  1,
		MasteryScore:  0.9,
		NextReviewAt:  &next,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))

	rec, err = repo.Get(ctx, learnerID, "de:haus")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, 1, rec.ExposureCount)

	// Second upsert must update the same row, not insert a duplicate.
	rec.ExposureCount = 2
	rec.MasteryScore = 0.95
	require.NoError(t, repo.Upsert(ctx, rec))

	all, err := repo.ByLearner(ctx, learnerID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, 2, all[0].ExposureCount)
	require.InDelta(t, 0.95, all[0].MasteryScore, 1e-9)
}

func TestMasteryRepo_DueForReview(t *testing.T) {
	st := openTestStore(t)
	repo := NewMasteryRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	learnerID := uuid.New()
	now := time.Now().UTC()

	put := func(conceptID string, due time.Time) {
		require.NoError(t, repo.Upsert(ctx, &MasteryRecord{
			LearnerID:    learnerID,
			ConceptID:    conceptID,
			NextReviewAt: &due,
		}))
	}
	put("overdue-long", now.Add(-48*time.Hour))
	put("overdue-short", now.Add(-time.Hour))
	put("future", now.Add(24*time.Hour))

	due, err := repo.DueForReview(ctx, learnerID, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, "overdue-long", due[0].ConceptID, "most overdue first")
	require.Equal(t, "overdue-short", due[1].ConceptID)
}

func TestMasteryRepo_WeakConcepts(t *testing.T) {
	st := openTestStore(t)
	repo := NewMasteryRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	learnerID := uuid.New()

	put := func(conceptID string, score float64, exposures int) {
		require.NoError(t, repo.Upsert(ctx, &MasteryRecord{
			LearnerID:     learnerID,
			ConceptID:     conceptID,
			MasteryScore:  score,
			ExposureCount: exposures,
		}))
	}
	put("weakest", 0.1, 5)
	put("weaker", 0.4, 5)
	put("strong", 0.9, 5)
	put("untouched", 0.0, 0) // zero exposures never count as weak

	weak, err := repo.WeakConcepts(ctx, learnerID, 0.7, 10)
	require.NoError(t, err)
	require.Len(t, weak, 2)
	require.Equal(t, "weakest", weak[0].ConceptID)
}

func TestMasteryRepo_PruneStaleAndDelete(t *testing.T) {
	st := openTestStore(t)
	repo := NewMasteryRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	learnerID := uuid.New()

	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	require.NoError(t, repo.Upsert(ctx, &MasteryRecord{
		LearnerID: learnerID, ConceptID: "never-touched", UpdatedAt: old,
	}))
	require.NoError(t, repo.Upsert(ctx, &MasteryRecord{
		LearnerID: learnerID, ConceptID: "active", ExposureCount: 3, UpdatedAt: old,
	}))

	pruned, err := repo.PruneStale(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned, "only the zero-exposure record is stale")

	deleted, err := repo.DeleteByLearner(ctx, learnerID)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}

func TestResultRepo_AggregatesAndTotals(t *testing.T) {
	st := openTestStore(t)
	repo := NewResultRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	learnerID := uuid.New()

	outcomes := []struct {
		concept string
		correct bool
	}{
		{"de:haus", true}, {"de:haus", true}, {"de:haus", false},
		{"de:katze", false},
	}
	base := time.Now().UTC().Add(-time.Hour)
	for i, o := range outcomes {
		require.NoError(t, repo.Append(ctx, &ExerciseResult{
			LearnerID: learnerID,
			ConceptID: o.concept,
			Correct:   o.correct,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	totals, err := repo.Totals(ctx, learnerID)
	require.NoError(t, err)
	require.Equal(t, 4, totals.Attempts)
	require.Equal(t, 2, totals.Correct)

	aggs, err := repo.ConceptAggregates(ctx, learnerID)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	byID := map[string]ConceptAggregate{}
	for _, a := range aggs {
		byID[a.ConceptID] = a
	}
	require.Equal(t, 3, byID["de:haus"].Attempts)
	require.Equal(t, 2, byID["de:haus"].Correct)

	recent, err := repo.RecentByLearner(ctx, learnerID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "de:katze", recent[0].ConceptID, "newest first")
}

func TestCacheRepo_Lifecycle(t *testing.T) {
	st := openTestStore(t)
	repo := NewCacheRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	entry := &CachedContent{
		CacheKey:     "abc123",
		ExerciseType: "flashcard",
		Payload:      []byte(`{"exercises":[]}`),
		LastUsedAt:   now,
		ExpiresAt:    now.Add(time.Hour),
	}
	require.NoError(t, repo.Put(ctx, entry))

	got, err := repo.GetByKey(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, entry.Payload, got.Payload)

	require.NoError(t, repo.Touch(ctx, "abc123", now.Add(time.Minute), now.Add(2*time.Hour)))
	got, err = repo.GetByKey(ctx, "abc123")
	require.NoError(t, err)
	require.Equal(t, 1, got.UsageCount)

	// Overwrite under the same key keeps a single row.
	require.NoError(t, repo.Put(ctx, &CachedContent{
		CacheKey:     "abc123",
		ExerciseType: "flashcard",
		Payload:      []byte(`{"exercises":[{}]}`),
		LastUsedAt:   now,
		ExpiresAt:    now.Add(time.Hour),
	}))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	expired, err := repo.DeleteExpired(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)
}

func TestCacheRepo_EvictLRU(t *testing.T) {
	st := openTestStore(t)
	repo := NewCacheRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	for i, key := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, repo.Put(ctx, &CachedContent{
			CacheKey:   key,
			Payload:    []byte("x"),
			LastUsedAt: now.Add(time.Duration(i) * time.Minute),
			ExpiresAt:  now.Add(time.Hour),
		}))
	}

	evicted, err := repo.EvictLRU(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, evicted)

	remaining, err := repo.GetByKey(ctx, "newest")
	require.NoError(t, err)
	require.NotNil(t, remaining, "most recently used entry survives")
}

func TestConceptRepo_SeedAndUnattempted(t *testing.T) {
	st := openTestStore(t)
	concepts := NewConceptRepo(st.DB(), logger.Nop())
	results := NewResultRepo(st.DB(), logger.Nop())
	ctx := context.Background()
	learnerID := uuid.New()

	require.NoError(t, concepts.Seed(ctx, []*Concept{
		{ID: "de:haus", Term: "das Haus", Topic: "home"},
		{ID: "de:katze", Term: "die Katze", Topic: "animals"},
	}))

	// Re-seeding with updated terms must not clobber confidence.
	require.NoError(t, concepts.UpdateConfidence(ctx, "de:haus", 0.4))
	require.NoError(t, concepts.Seed(ctx, []*Concept{
		{ID: "de:haus", Term: "das Haus (n.)", Topic: "home"},
	}))
	c, err := concepts.Get(ctx, "de:haus")
	require.NoError(t, err)
	require.Equal(t, "das Haus (n.)", c.Term)
	require.InDelta(t, 0.4, c.Confidence, 1e-9)

	require.NoError(t, results.Append(ctx, &ExerciseResult{
		LearnerID: learnerID, ConceptID: "de:haus", Correct: true,
	}))

	fresh, err := concepts.UnattemptedByLearner(ctx, learnerID, 10)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	require.Equal(t, "de:katze", fresh[0].ID)
}

func TestRejectionRepo_CategoryCounts(t *testing.T) {
	st := openTestStore(t)
	repo := NewRejectionRepo(st.DB(), logger.Nop())
	ctx := context.Background()

	for range 3 {
		require.NoError(t, repo.Append(ctx, &RejectionEvent{ConceptID: "de:haus", Category: "duplicate"}))
	}
	require.NoError(t, repo.Append(ctx, &RejectionEvent{ConceptID: "de:haus", Category: "low-quality"}))
	require.NoError(t, repo.Append(ctx, &RejectionEvent{ConceptID: "de:katze", Category: "duplicate"}))

	counts, err := repo.CategoryCounts(ctx, "de:haus")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, "duplicate", counts[0].Category)
	require.Equal(t, 3, counts[0].Count)
}

func TestDialectorFor(t *testing.T) {
	require.Equal(t, "postgres", dialectorFor("postgres://u:p@localhost/db").Name())
	require.Equal(t, "postgres", dialectorFor("host=localhost user=u dbname=db").Name())
	require.Equal(t, "sqlite", dialectorFor("/tmp/lexloop.db").Name())
}
