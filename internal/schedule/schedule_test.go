package schedule

import (
	"testing"
	"time"

	"github.com/lexloop/lexloop/internal/store"
)

func TestInterval(t *testing.T) {
	s := New(DefaultConfig())
	day := 24 * time.Hour

	tests := []struct {
		name    string
		mastery float64
		streak  int
		want    time.Duration
	}{
		{"no history", 0.0, 0, day},
		{"low mastery single correct", 0.3, 1, time.Duration(1.3 * float64(day))},
		{"mid mastery run of two", 0.6, 2, time.Duration(1.8 * 1.8 * float64(day))},
		{"high mastery run of three", 0.9, 3, time.Duration(2.5 * 2.5 * 2.5 * float64(day))},
		{"incorrect run resets to base", 0.9, -4, day},
		{"long run hits the cap", 0.95, 10, 90 * day},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &store.MasteryRecord{
				MasteryScore:      tt.mastery,
				LastOutcomeStreak: tt.streak,
			}
			got := s.Interval(rec)
			if got != tt.want {
				t.Errorf("Interval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextReview(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := &store.MasteryRecord{MasteryScore: 0.9, LastOutcomeStreak: 1}
	got := s.NextReview(rec, now)
	want := now.Add(time.Duration(2.5 * float64(24*time.Hour)))
	if !got.Equal(want) {
		t.Errorf("NextReview() = %v, want %v", got, want)
	}
}

func TestIntervalNeverBelowBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrowthLow = 0.5 // misconfigured growth must not shrink the interval
	s := New(cfg)

	rec := &store.MasteryRecord{MasteryScore: 0.1, LastOutcomeStreak: 3}
	if got := s.Interval(rec); got < cfg.BaseInterval {
		t.Errorf("Interval() = %v, below base %v", got, cfg.BaseInterval)
	}
}

func TestIntervalOverflowCapped(t *testing.T) {
	s := New(DefaultConfig())

	rec := &store.MasteryRecord{MasteryScore: 0.99, LastOutcomeStreak: 500}
	if got := s.Interval(rec); got != DefaultConfig().MaxInterval {
		t.Errorf("Interval() = %v, want cap %v", got, DefaultConfig().MaxInterval)
	}
}
