package content

import (
	"fmt"
	"strings"
)

// ShapeValidator enforces the per-type structural rules: choice counts
// for multiple choice, the blank marker for cloze, pair counts for
// matching.
type ShapeValidator struct{}

func (v *ShapeValidator) Name() string { return "shape" }

func (v *ShapeValidator) Validate(b *Batch, _ GenerateInput) *ValidationError {
	for i, ex := range b.Exercises {
		switch ex.Type {
		case TypeMultipleChoice:
			if err := v.checkChoices(i, ex); err != nil {
				return err
			}
		case TypeCloze:
			if !strings.Contains(ex.Prompt, "___") {
				return &ValidationError{
					Validator: v.Name(),
					Message:   fmt.Sprintf("exercise %d cloze prompt has no ___ blank", i),
					Retryable: true,
				}
			}
		case TypeMatching:
			if err := v.checkPairs(i, ex); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *ShapeValidator) checkChoices(i int, ex Exercise) *ValidationError {
	if len(ex.Choices) != 4 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("exercise %d has %d choices, expected 4", i, len(ex.Choices)),
			Retryable: true,
		}
	}
	matches := 0
	seen := make(map[string]bool, len(ex.Choices))
	for _, c := range ex.Choices {
		if seen[c] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d has duplicate choice %q", i, c),
				Retryable: true,
			}
		}
		seen[c] = true
		if c == ex.Answer {
			matches++
		}
	}
	if matches != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("exercise %d answer must match exactly one choice, matched %d", i, matches),
			Retryable: true,
		}
	}
	return nil
}

func (v *ShapeValidator) checkPairs(i int, ex Exercise) *ValidationError {
	if len(ex.Pairs) < 3 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("exercise %d has %d pairs, expected at least 3", i, len(ex.Pairs)),
			Retryable: true,
		}
	}
	left := make(map[string]bool, len(ex.Pairs))
	for _, p := range ex.Pairs {
		if p.Left == "" || p.Right == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d has an empty pair side", i),
				Retryable: true,
			}
		}
		if left[p.Left] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("exercise %d repeats pair term %q", i, p.Left),
				Retryable: true,
			}
		}
		left[p.Left] = true
	}
	return nil
}
