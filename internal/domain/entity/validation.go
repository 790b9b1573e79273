package entity

import "strings"

const (
	// MinTextLength is the minimum number of characters accepted for direct
	// text summarization. Shorter inputs carry nothing worth condensing.
	MinTextLength = 10
)

// TextLimits holds the tier-dependent input limits applied during validation.
type TextLimits struct {
	// MaxGuestTextLength caps direct text input for guest callers, in runes.
	// Account callers are not subject to this cap.
	MaxGuestTextLength int
}

// ValidateText checks a direct-text summarization request against the
// caller's tier limits. Validation happens before any quota or credit is
// consumed, so a doomed request never costs the caller anything.
func ValidateText(text string, caller Caller, limits TextLimits) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &ValidationError{Field: "text", Message: "cannot be empty"}
	}
	if len([]rune(trimmed)) < MinTextLength {
		return &ValidationError{Field: "text", Message: "too short, must be at least 10 characters"}
	}
	if caller.IsGuest() && limits.MaxGuestTextLength > 0 && len([]rune(text)) > limits.MaxGuestTextLength {
		return &ValidationError{Field: "text", Message: "too long for guest access, sign in for longer inputs"}
	}
	return nil
}
