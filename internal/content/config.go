package content

import "time"

// Config controls the behavior of the generation service.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// generated batch. They execute in order; the first failure stops
	// the pipeline.
	Validators []Validator

	// BatchSize is the number of exercises requested per generation.
	BatchSize int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorPrompts is the maximum number of recent exercise prompts
	// to include in the prompt for deduplication.
	MaxPriorPrompts int

	// GenTimeout bounds a single generation call, including provider
	// retries.
	GenTimeout time.Duration
}

// DefaultConfig returns a Config with the standard validator chain and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ShapeValidator{},
			&ConceptValidator{},
		},
		BatchSize:       5,
		MaxTokens:       2048,
		Temperature:     0.7,
		MaxPriorPrompts: 20,
		GenTimeout:      60 * time.Second,
	}
}
