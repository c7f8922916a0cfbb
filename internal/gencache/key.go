package gencache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/lexloop/lexloop/internal/policy"
)

// keyPayload is the normalized form of a generation policy that gets
// hashed. Field order is fixed by the struct; topic and hint lists are
// sorted copies, so any two policies that agree after normalization
// serialize — and therefore hash — identically.
//
// The streak is deliberately absent: it changes on every answer and the
// difficulty adjustment already folds recent performance into the policy.
// Hints are present because they change the effective prompt.
type keyPayload struct {
	Level        string   `json:"level"`
	Difficulty   int      `json:"difficulty"`
	Weak         []string `json:"weak"`
	Mastered     []string `json:"mastered"`
	New          []string `json:"new"`
	Hints        []string `json:"hints"`
	ExerciseType string   `json:"exercise_type"`
}

// CacheKey derives the deterministic cache key for a policy and exercise
// type: SHA-256 over the normalized serialization, truncated to 32 hex
// characters.
func CacheKey(p *policy.GenerationPolicy, exerciseType string) string {
	payload := keyPayload{
		Level:        string(p.Level),
		Difficulty:   p.Difficulty,
		Weak:         sortedCopy(p.WeakConcepts),
		Mastered:     sortedCopy(p.MasteredConcepts),
		New:          sortedCopy(p.NewConcepts),
		Hints:        sortedCopy(p.Hints),
		ExerciseType: exerciseType,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		// Marshal of plain strings and ints cannot fail; keep the
		// signature simple.
		panic(err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:32]
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
