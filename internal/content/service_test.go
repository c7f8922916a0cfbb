package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/lexloop/lexloop/internal/feedback"
	"github.com/lexloop/lexloop/internal/gencache"
	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/policy"
	"github.com/lexloop/lexloop/internal/store"
)

// emptyResults satisfies store.ResultRepo for a learner with no history.
type emptyResults struct{}

func (emptyResults) Append(_ context.Context, _ *store.ExerciseResult) error { return nil }

func (emptyResults) RecentByLearner(_ context.Context, _ uuid.UUID, _ int) ([]*store.ExerciseResult, error) {
	return nil, nil
}

func (emptyResults) ConceptAggregates(_ context.Context, _ uuid.UUID) ([]store.ConceptAggregate, error) {
	return nil, nil
}

func (emptyResults) Totals(_ context.Context, _ uuid.UUID) (store.LearnerTotals, error) {
	return store.LearnerTotals{}, nil
}

func (emptyResults) DeleteByLearner(_ context.Context, _ uuid.UUID) (int64, error) { return 0, nil }

type catalogConcepts struct {
	catalog []*store.Concept
}

func (c *catalogConcepts) Get(_ context.Context, id string) (*store.Concept, error) {
	for _, concept := range c.catalog {
		if concept.ID == id {
			return concept, nil
		}
	}
	return nil, nil
}

func (c *catalogConcepts) Seed(_ context.Context, _ []*store.Concept) error { return nil }

func (c *catalogConcepts) All(_ context.Context) ([]*store.Concept, error) {
	return c.catalog, nil
}

func (c *catalogConcepts) UnattemptedByLearner(_ context.Context, _ uuid.UUID, limit int) ([]*store.Concept, error) {
	if limit > 0 && len(c.catalog) > limit {
		return c.catalog[:limit], nil
	}
	return c.catalog, nil
}

func (c *catalogConcepts) UpdateConfidence(_ context.Context, _ string, _ float64) error {
	return nil
}

// emptyRejections satisfies store.RejectionRepo with no history.
type emptyRejections struct{}

func (emptyRejections) Append(_ context.Context, _ *store.RejectionEvent) error { return nil }

func (emptyRejections) CategoryCounts(_ context.Context, _ string) ([]store.CategoryCount, error) {
	return nil, nil
}

func (emptyRejections) ByConcept(_ context.Context, _ string) ([]*store.RejectionEvent, error) {
	return nil, nil
}

// memCache is an in-memory gencache.Cache that records its traffic.
type memCache struct {
	entries map[string][]byte
	gets    int
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, p *policy.GenerationPolicy, exerciseType string) ([]byte, bool) {
	m.gets++
	payload, ok := m.entries[gencache.CacheKey(p, exerciseType)]
	return payload, ok
}

func (m *memCache) Put(_ context.Context, p *policy.GenerationPolicy, exerciseType string, payload []byte) {
	m.puts++
	m.entries[gencache.CacheKey(p, exerciseType)] = payload
}

// stubGenerator returns a fixed batch or error and counts calls.
type stubGenerator struct {
	batch *Batch
	err   error
	calls int
	last  GenerateInput
}

func (s *stubGenerator) Generate(_ context.Context, input GenerateInput) (*Batch, error) {
	s.calls++
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func flashcardBatch() *Batch {
	return &Batch{Exercises: []Exercise{{
		Type:       TypeFlashcard,
		ConceptID:  "de:haus",
		Prompt:     "Translate: the house",
		Answer:     "das Haus",
		Difficulty: 1,
	}}}
}

func newTestService(cache gencache.Cache, gen Generator) *Service {
	builder := policy.NewBuilder(policy.DefaultConfig(), emptyResults{}, &catalogConcepts{
		catalog: []*store.Concept{{ID: "de:haus", Term: "das Haus"}},
	}, logger.Nop())
	hints := feedback.NewLearner(feedback.DefaultConfig(), emptyRejections{}, &catalogConcepts{}, logger.Nop())
	return NewService(DefaultConfig(), builder, hints, cache, gen, logger.Nop())
}

func TestRequestContent_MissGeneratesAndCaches(t *testing.T) {
	cache := newMemCache()
	gen := &stubGenerator{batch: flashcardBatch()}
	svc := newTestService(cache, gen)

	res, err := svc.RequestContent(context.Background(), uuid.New(), TypeFlashcard)
	if err != nil {
		t.Fatalf("RequestContent() error: %v", err)
	}

	if res.CacheHit {
		t.Error("first request must be a miss")
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
	if len(res.Batch.Exercises) != 1 {
		t.Fatalf("batch size = %d, want 1", len(res.Batch.Exercises))
	}
	if res.Policy.Level != policy.LevelBeginner {
		t.Errorf("policy level = %s, want beginner for empty history", res.Policy.Level)
	}
}

func TestRequestContent_HitSkipsGenerator(t *testing.T) {
	cache := newMemCache()
	gen := &stubGenerator{batch: flashcardBatch()}
	svc := newTestService(cache, gen)
	learnerID := uuid.New()

	if _, err := svc.RequestContent(context.Background(), learnerID, TypeFlashcard); err != nil {
		t.Fatalf("first request error: %v", err)
	}

	res, err := svc.RequestContent(context.Background(), learnerID, TypeFlashcard)
	if err != nil {
		t.Fatalf("second request error: %v", err)
	}
	if !res.CacheHit {
		t.Error("second identical request must hit the cache")
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1 (cache must absorb the second)", gen.calls)
	}
}

func TestRequestContent_GenerationFailure(t *testing.T) {
	cache := newMemCache()
	gen := &stubGenerator{err: errors.New("provider down")}
	svc := newTestService(cache, gen)

	_, err := svc.RequestContent(context.Background(), uuid.New(), TypeFlashcard)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	if cache.puts != 0 {
		t.Error("failed generation must not touch the cache")
	}
}

func TestRequestContent_InvalidInput(t *testing.T) {
	svc := newTestService(newMemCache(), &stubGenerator{batch: flashcardBatch()})

	if _, err := svc.RequestContent(context.Background(), uuid.Nil, TypeFlashcard); err == nil {
		t.Error("expected error for nil learner id")
	}
	if _, err := svc.RequestContent(context.Background(), uuid.New(), ExerciseType("quiz")); err == nil {
		t.Error("expected error for unknown exercise type")
	}
}

func TestRequestContent_CorruptCacheEntryRegenerates(t *testing.T) {
	cache := newMemCache()
	gen := &stubGenerator{batch: flashcardBatch()}
	svc := newTestService(cache, gen)
	learnerID := uuid.New()

	// Pre-poison the cache under the policy this learner will produce.
	pol, err := svc.builder.BuildContext(context.Background(), learnerID)
	if err != nil {
		t.Fatal(err)
	}
	cache.entries[gencache.CacheKey(pol, string(TypeFlashcard))] = []byte("not json")

	res, err := svc.RequestContent(context.Background(), learnerID, TypeFlashcard)
	if err != nil {
		t.Fatalf("RequestContent() error: %v", err)
	}
	if res.CacheHit {
		t.Error("corrupt entry must not count as a hit")
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestRequestContent_DedupRemembersPrompts(t *testing.T) {
	cache := newMemCache()
	gen := &stubGenerator{batch: flashcardBatch()}
	svc := newTestService(cache, gen)
	learnerID := uuid.New()

	if _, err := svc.RequestContent(context.Background(), learnerID, TypeFlashcard); err != nil {
		t.Fatal(err)
	}

	// Different type forces a second generation; the first batch's
	// prompts must arrive as dedup context.
	gen.batch = &Batch{Exercises: []Exercise{{
		Type:       TypeCloze,
		ConceptID:  "de:haus",
		Prompt:     "Ich wohne in einem ___.",
		Answer:     "Haus",
		Difficulty: 1,
	}}}
	if _, err := svc.RequestContent(context.Background(), learnerID, TypeCloze); err != nil {
		t.Fatal(err)
	}

	if len(gen.last.PriorPrompts) != 1 || gen.last.PriorPrompts[0] != "Translate: the house" {
		t.Errorf("prior prompts = %v, want the first batch's prompt", gen.last.PriorPrompts)
	}
}

func TestResultRoundTripsThroughCache(t *testing.T) {
	payload, err := json.Marshal(flashcardBatch())
	if err != nil {
		t.Fatal(err)
	}
	var batch Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		t.Fatal(err)
	}
	if batch.Exercises[0].Answer != "das Haus" {
		t.Errorf("answer = %q after round trip", batch.Exercises[0].Answer)
	}
}
