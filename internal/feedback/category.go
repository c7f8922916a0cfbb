package feedback

import "fmt"

// Category classifies why a reviewer rejected generated content.
type Category string

const (
	CategoryIncorrectMatch   Category = "incorrect-match"
	CategoryIncorrectFeature Category = "incorrect-feature"
	CategoryPoorLocalization Category = "poor-localization"
	CategoryFalsePositive    Category = "false-positive"
	CategoryDuplicate        Category = "duplicate"
	CategoryLowQuality       Category = "low-quality"
	CategoryOther            Category = "other"
)

var validCategories = map[Category]bool{
	CategoryIncorrectMatch:   true,
	CategoryIncorrectFeature: true,
	CategoryPoorLocalization: true,
	CategoryFalsePositive:    true,
	CategoryDuplicate:        true,
	CategoryLowQuality:       true,
	CategoryOther:            true,
}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !validCategories[c] {
		return "", fmt.Errorf("unknown rejection category %q", s)
	}
	return c, nil
}

// hintGuidance maps each category to the caution appended to generation
// prompts once the category has repeated rejections.
var hintGuidance = map[Category]string{
	CategoryIncorrectMatch:   "verify the content actually matches the concept's meaning before using it",
	CategoryIncorrectFeature: "double-check the concept's attributes; previously generated features were wrong",
	CategoryPoorLocalization: "pay attention to precise placement and context for this concept",
	CategoryFalsePositive:    "avoid presenting this concept where it does not actually apply",
	CategoryDuplicate:        "avoid repeating previously generated content for this concept",
	CategoryLowQuality:       "raise the overall quality bar for this concept; prior output was rejected as sloppy",
	CategoryOther:            "reviewers have repeatedly flagged content for this concept; be conservative",
}
