package text

import (
	"regexp"
	"strings"
)

var (
	// whitespaceRuns matches any run of whitespace, including newlines.
	whitespaceRuns = regexp.MustCompile(`\s+`)

	// unsafeChars matches everything except letters, digits, underscore,
	// whitespace, and the punctuation set kept for summarization input.
	// Unicode letter/number classes are used so non-ASCII text survives.
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()-]`)
)

// Normalize prepares raw or extracted text for summarization.
// It removes unsafe characters, collapses every whitespace run into a single
// space, and trims leading/trailing whitespace.
//
// Normalize is idempotent and never increases the length of its input:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	s = unsafeChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CapWords truncates text to the first maxWords words, preserving word
// boundaries. Input at or under the cap is returned unchanged.
// A cap of zero or less disables truncation.
func CapWords(s string, maxWords int) string {
	if maxWords <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}

// CountWords returns the number of whitespace-separated words in the text.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
