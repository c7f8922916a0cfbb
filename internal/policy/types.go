package policy

// Level is the coarse skill band a learner generates content at.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// GenerationPolicy is the computed parameter set that shapes one
// content-generation request. Ephemeral: rebuilt per request from the
// learner's history, never persisted.
type GenerationPolicy struct {
	// Level is the learner's skill band.
	Level Level

	// Difficulty is the target difficulty, 1-5.
	Difficulty int

	// WeakConcepts are the concepts the learner struggles with most
	// (lowest accuracy first).
	WeakConcepts []string

	// MasteredConcepts are the concepts with the strongest history
	// (highest accuracy first).
	MasteredConcepts []string

	// NewConcepts are catalog concepts the learner has never attempted.
	NewConcepts []string

	// Streak is the learner's current run of consecutive correct answers
	// across concepts (0 if the most recent answer was wrong).
	Streak int

	// Hints are prompt-shaping cautions derived from rejection patterns.
	// Non-empty hints change the effective prompt, so they participate
	// in cache-key derivation.
	Hints []string
}
