package content

import "fmt"

// ConceptValidator checks that every exercise targets a concept the
// policy actually asked for. Hallucinated concept IDs would corrupt the
// mastery model once results come back.
type ConceptValidator struct{}

func (v *ConceptValidator) Name() string { return "concepts" }

func (v *ConceptValidator) Validate(b *Batch, input GenerateInput) *ValidationError {
	if input.Policy == nil {
		return nil
	}

	allowed := make(map[string]bool)
	for _, id := range input.Policy.WeakConcepts {
		allowed[id] = true
	}
	for _, id := range input.Policy.NewConcepts {
		allowed[id] = true
	}
	for _, id := range input.Policy.MasteredConcepts {
		allowed[id] = true
	}
	if len(allowed) == 0 {
		return nil
	}

	for i, ex := range b.Exercises {
		if !allowed[ex.ConceptID] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d targets unknown concept %q", i, ex.ConceptID),
				Retryable: true,
			}
		}
	}
	return nil
}
