package content

// ExerciseType describes the interaction style of a generated exercise.
type ExerciseType string

const (
	// TypeFlashcard shows a term and expects the learner to recall the
	// translation before flipping the card.
	TypeFlashcard ExerciseType = "flashcard"

	// TypeMultipleChoice asks the learner to pick the correct translation
	// from 4 options.
	TypeMultipleChoice ExerciseType = "multiple_choice"

	// TypeCloze presents a sentence with the target word blanked out.
	TypeCloze ExerciseType = "cloze"

	// TypeMatching asks the learner to pair terms with translations.
	TypeMatching ExerciseType = "matching"
)

// ParseExerciseType validates a user-supplied exercise type string.
func ParseExerciseType(s string) (ExerciseType, bool) {
	switch ExerciseType(s) {
	case TypeFlashcard, TypeMultipleChoice, TypeCloze, TypeMatching:
		return ExerciseType(s), true
	}
	return "", false
}

// MatchPair is a single term/translation pair in a matching exercise.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Exercise is a single generated vocabulary exercise ready for delivery.
type Exercise struct {
	// Type indicates how the learner interacts with this exercise.
	Type ExerciseType `json:"type"`

	// ConceptID is the vocabulary concept this exercise drills.
	ConceptID string `json:"concept_id"`

	// Prompt is the text shown to the learner. For cloze exercises the
	// blank is marked with "___".
	Prompt string `json:"prompt"`

	// Answer is the canonical correct answer. For multiple choice it is
	// the text of the correct option. Empty for matching exercises.
	Answer string `json:"answer"`

	// Choices is populated only for multiple_choice. Exactly 4 options,
	// one of which matches Answer.
	Choices []string `json:"choices,omitempty"`

	// Pairs is populated only for matching. At least 3 pairs.
	Pairs []MatchPair `json:"pairs,omitempty"`

	// Hint is an optional short scaffolding hint.
	Hint string `json:"hint,omitempty"`

	// Difficulty is the model's self-assessed difficulty (1-5).
	Difficulty int `json:"difficulty"`

	// Explanation is a brief note shown after the learner answers,
	// typically a usage example or mnemonic.
	Explanation string `json:"explanation,omitempty"`
}

// Batch is the unit of generation and caching: a set of exercises
// produced for one policy + exercise type combination.
type Batch struct {
	Exercises []Exercise `json:"exercises"`
}
