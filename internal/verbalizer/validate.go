package verbalizer

import "strings"

// prohibitedTerms makes the no-appearance/no-emotion/no-identity
// guarantee a property of the text itself, not of whatever produced
// it. Any case-insensitive substring match rejects the output.
var prohibitedTerms = []string{
	// gender
	"man", "woman", "boy", "girl", "person named", "user named",
	// appearance
	"wearing", "dressed", "hair", "face", "eyes", "skin", "looks like",
	"attractive", "young", "old", "tall", "short", "glasses",
	// emotion
	"happy", "sad", "angry", "excited", "bored", "confused", "frustrated",
	"smiling", "frowning", "laughing", "crying",
	// race/ethnicity
	"white", "black", "asian", "latino", "hispanic", "african",
	// age
	"elderly", "teenager", "child", "adult",
}

// ValidationResult reports whether a candidate verbalization is safe
// to speak.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// ValidateOutput applies the output-side safety checks: length bound,
// non-empty, and no prohibited term. Any failure means the caller must
// fall back to the template path.
func ValidateOutput(text string, maxLength int) ValidationResult {
	if len(text) > maxLength {
		return ValidationResult{Valid: false, Reason: "output exceeds max length"}
	}
	if strings.TrimSpace(text) == "" {
		return ValidationResult{Valid: false, Reason: "output is empty"}
	}
	lower := strings.ToLower(text)
	for _, term := range prohibitedTerms {
		if strings.Contains(lower, term) {
			return ValidationResult{Valid: false, Reason: "output contains prohibited term: " + term}
		}
	}
	return ValidationResult{Valid: true}
}
