package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexloop/lexloop/internal/llm"
	"github.com/lexloop/lexloop/internal/policy"
)

// GenerateInput holds all context needed to generate a batch.
type GenerateInput struct {
	// Policy is the generation policy the batch must satisfy, with
	// enhancement hints already merged in.
	Policy *policy.GenerationPolicy

	// ExerciseType is the requested interaction style.
	ExerciseType ExerciseType

	// PriorPrompts contains prompts of exercises recently generated for
	// this learner, for deduplication.
	PriorPrompts []string
}

// Generator produces a validated batch of exercises.
type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*Batch, error)
}

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// NewGenerator creates an LLMGenerator with the given provider and config.
func NewGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate produces a single batch for the given input context.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Batch, error) {
	ctx = llm.WithPurpose(ctx, "exercise-gen")

	userMsg := buildUserMessage(input.Policy, input.ExerciseType, g.config.BatchSize, input.PriorPrompts, g.config.MaxPriorPrompts)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var batch Batch
	if err := json.Unmarshal(resp.Content, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	// Run validators in order.
	for _, v := range g.config.Validators {
		if verr := v.Validate(&batch, input); verr != nil {
			return nil, verr
		}
	}

	return &batch, nil
}
