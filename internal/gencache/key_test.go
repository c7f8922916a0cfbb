package gencache

import (
	"testing"
	"time"

	"github.com/lexloop/lexloop/internal/policy"
)

func samplePolicy() *policy.GenerationPolicy {
	return &policy.GenerationPolicy{
		Level:            policy.LevelIntermediate,
		Difficulty:       3,
		WeakConcepts:     []string{"de:haus", "de:katze"},
		MasteredConcepts: []string{"de:hund"},
		NewConcepts:      []string{"de:brot"},
		Hints:            []string{"avoid literal translations"},
		Streak:           4,
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	a := CacheKey(samplePolicy(), "flashcard")
	b := CacheKey(samplePolicy(), "flashcard")
	if a != b {
		t.Errorf("same policy produced different keys: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32", len(a))
	}
}

func TestCacheKey_TopicOrderIrrelevant(t *testing.T) {
	a := samplePolicy()
	b := samplePolicy()
	b.WeakConcepts = []string{"de:katze", "de:haus"}

	if CacheKey(a, "flashcard") != CacheKey(b, "flashcard") {
		t.Error("topic list order must not change the key")
	}
}

func TestCacheKey_StreakIrrelevant(t *testing.T) {
	a := samplePolicy()
	b := samplePolicy()
	b.Streak = 99

	if CacheKey(a, "flashcard") != CacheKey(b, "flashcard") {
		t.Error("streak must not participate in the key")
	}
}

func TestCacheKey_SensitiveFields(t *testing.T) {
	base := CacheKey(samplePolicy(), "flashcard")

	tests := []struct {
		name   string
		mutate func(*policy.GenerationPolicy)
	}{
		{"level", func(p *policy.GenerationPolicy) { p.Level = policy.LevelAdvanced }},
		{"difficulty", func(p *policy.GenerationPolicy) { p.Difficulty = 4 }},
		{"weak concepts", func(p *policy.GenerationPolicy) { p.WeakConcepts = append(p.WeakConcepts, "de:milch") }},
		{"hints", func(p *policy.GenerationPolicy) { p.Hints = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePolicy()
			tt.mutate(p)
			if CacheKey(p, "flashcard") == base {
				t.Errorf("changing %s did not change the key", tt.name)
			}
		})
	}

	if CacheKey(samplePolicy(), "cloze") == base {
		t.Error("changing the exercise type did not change the key")
	}
}

func TestTTLFor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		usage  int
		sparse bool
		want   float64 // multiple of DefaultTTL
	}{
		{"fresh", 0, false, 1},
		{"sparse", 0, true, 0.5},
		{"popular", cfg.PopularityThreshold + 1, false, 2},
		{"popular sparse", cfg.PopularityThreshold + 1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.ttlFor(tt.usage, tt.sparse)
			want := time.Duration(tt.want * float64(cfg.DefaultTTL))
			if got != want {
				t.Errorf("ttlFor(%d, %v) = %v, want %v", tt.usage, tt.sparse, got, want)
			}
		})
	}
}

func TestIsSparse(t *testing.T) {
	cfg := DefaultConfig()

	p := samplePolicy()
	if cfg.isSparse(p) {
		t.Error("small policy flagged sparse")
	}

	for i := 0; i <= cfg.SparseTopicCount; i++ {
		p.NewConcepts = append(p.NewConcepts, "x")
	}
	if !cfg.isSparse(p) {
		t.Error("wide policy not flagged sparse")
	}
}
