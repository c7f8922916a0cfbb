package content

import "fmt"

// StructuralValidator checks that every exercise has required fields,
// stays within length limits, and matches the requested type.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(b *Batch, input GenerateInput) *ValidationError {
	if len(b.Exercises) == 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "batch contains no exercises",
			Retryable: true,
		}
	}
	for i, ex := range b.Exercises {
		if ex.Type != input.ExerciseType {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d has type %q, expected %q", i, ex.Type, input.ExerciseType),
				Retryable: true,
			}
		}
		if ex.ConceptID == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d has no concept_id", i),
				Retryable: true,
			}
		}
		if ex.Prompt == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d has an empty prompt", i),
				Retryable: true,
			}
		}
		if len(ex.Prompt) > 500 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d prompt exceeds 500 characters", i),
				Retryable: true,
			}
		}
		if ex.Difficulty < 1 || ex.Difficulty > 5 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d difficulty must be between 1 and 5", i),
				Retryable: true,
			}
		}
		if ex.Type != TypeMatching && ex.Answer == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d has no answer", i),
				Retryable: true,
			}
		}
	}
	return nil
}
