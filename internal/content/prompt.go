package content

import (
	"fmt"
	"strings"

	"github.com/lexloop/lexloop/internal/policy"
)

const systemPrompt = `You are a language tutor creating vocabulary practice exercises for adult learners.

Rules:
- Generate the requested number of exercises of the requested type, targeting the concepts listed in the prompt.
- Prioritize weak concepts, then new concepts. Use mastered concepts only as distractors or matching filler.
- The prompt text must be clear, self-contained, and appropriate for the learner's level.
- For multiple_choice, provide exactly 4 options where exactly one is correct. Distractors should be plausible confusions (similar spelling, related meaning), not random words.
- For cloze, write a natural sentence at the learner's level and replace the target word with ___.
- For matching, provide at least 3 term/translation pairs, all distinct.
- Difficulty 1-2 exercises use high-frequency words and short sentences; 4-5 may use idioms and longer context.
- Follow every content guideline listed under "Generation guidance".
- Do not repeat any exercise from the "already generated" list.`

// buildUserMessage renders the generation policy and service limits into
// the user message for the LLM.
func buildUserMessage(p *policy.GenerationPolicy, exerciseType ExerciseType, batchSize int, prior []string, maxPrior int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Exercise type: %s\n", exerciseType)
	fmt.Fprintf(&b, "Number of exercises: %d\n", batchSize)
	fmt.Fprintf(&b, "Learner level: %s\n", p.Level)
	fmt.Fprintf(&b, "Difficulty: %d\n", p.Difficulty)

	fmt.Fprintf(&b, "\nWeak concepts (prioritize these):\n%s\n", conceptList(p.WeakConcepts))
	fmt.Fprintf(&b, "\nNew concepts (introduce these):\n%s\n", conceptList(p.NewConcepts))
	fmt.Fprintf(&b, "\nMastered concepts (distractors only):\n%s\n", conceptList(p.MasteredConcepts))

	b.WriteString("\nGeneration guidance:\n")
	b.WriteString(hintList(p.Hints))

	b.WriteString("\nAlready generated for this learner:\n")
	b.WriteString(buildDedup(prior, maxPrior))

	return b.String()
}

func conceptList(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	return strings.Join(ids, ", ")
}

func hintList(hints []string) string {
	if len(hints) == 0 {
		return "None"
	}
	var b strings.Builder
	for _, h := range hints {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildDedup formats prior exercise prompts, respecting the max limit.
// Returns "None" if there is no history.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}

	// Keep only the most recent N prompts.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
