package content

import "github.com/lexloop/lexloop/internal/llm"

// BatchSchema defines the JSON schema for LLM exercise generation responses.
var BatchSchema = &llm.Schema{
	Name:        "vocab-exercise-batch",
	Description: "A batch of vocabulary practice exercises with answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"exercises": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"flashcard", "multiple_choice", "cloze", "matching"},
							"description": "The interaction style of this exercise",
						},
						"concept_id": map[string]any{
							"type":        "string",
							"description": "The vocabulary concept this exercise drills, from the provided concept lists",
						},
						"prompt": map[string]any{
							"type":        "string",
							"description": "The text shown to the learner. For cloze, mark the blank with ___",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer. For multiple choice: the text of the correct option. Empty for matching.",
						},
						"choices": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Exactly 4 options for multiple_choice. Empty array otherwise.",
						},
						"pairs": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"left":  map[string]any{"type": "string"},
									"right": map[string]any{"type": "string"},
								},
								"required":             []any{"left", "right"},
								"additionalProperties": false,
							},
							"description": "Term/translation pairs for matching. Empty array otherwise.",
						},
						"hint": map[string]any{
							"type":        "string",
							"description": "A short scaffolding hint, or empty",
						},
						"difficulty": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     5,
							"description": "Self-assessed difficulty from 1 (easy) to 5 (hard)",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "A usage example or mnemonic shown after answering",
						},
					},
					"required":             []any{"type", "concept_id", "prompt", "answer", "choices", "pairs", "hint", "difficulty", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"exercises"},
		"additionalProperties": false,
	},
}
