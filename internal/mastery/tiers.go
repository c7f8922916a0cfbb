package mastery

// ConfidenceTier buckets a mastery score into the 1-5 tier used for
// reporting. Pure step function: increasing the score never decreases
// the tier.
func ConfidenceTier(masteryScore float64) int {
	switch {
	case masteryScore < 0.25:
		return 1
	case masteryScore < 0.50:
		return 2
	case masteryScore < 0.75:
		return 3
	case masteryScore < 0.90:
		return 4
	default:
		return 5
	}
}
