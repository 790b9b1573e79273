package entity

import (
	"fmt"
	"time"
)

// Strategy selects the summarization algorithm variant.
// The strategy is an explicit enumerated value on the request; it is never
// inferred from content and there is no silent fallback between strategies.
type Strategy string

const (
	// StrategyAbstractive generates a new condensed text using a pretrained
	// sequence-to-sequence model.
	StrategyAbstractive Strategy = "abstractive"

	// StrategyExtractive selects the highest-ranked sentences from the
	// input using statistical sentence ranking.
	StrategyExtractive Strategy = "extractive"
)

// ParseStrategy validates and converts a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAbstractive, StrategyExtractive:
		return Strategy(s), nil
	default:
		return "", &ValidationError{Field: "strategy", Message: fmt.Sprintf("unknown strategy %q", s)}
	}
}

// Tone is a post-hoc stylistic transformation applied to a finished summary.
// It restyles the summary without changing its informational content.
type Tone string

const (
	// ToneFormal leaves the summary unchanged.
	ToneFormal Tone = "formal"

	// ToneCasual applies a fixed set of literal connective substitutions.
	ToneCasual Tone = "casual"

	// ToneBullet renders the summary as one bullet line per sentence.
	ToneBullet Tone = "bullet"
)

// ParseTone validates and converts a string into a Tone.
// An empty string defaults to ToneFormal.
func ParseTone(s string) (Tone, error) {
	if s == "" {
		return ToneFormal, nil
	}
	switch Tone(s) {
	case ToneFormal, ToneCasual, ToneBullet:
		return Tone(s), nil
	default:
		return "", &ValidationError{Field: "tone", Message: fmt.Sprintf("unknown tone %q", s)}
	}
}

// SummaryRequest is an immutable request value passed to the orchestrator.
type SummaryRequest struct {
	Text     string
	Strategy Strategy
	Tone     Tone
	Caller   Caller
}

// FileMetadata describes an uploaded document after extraction.
type FileMetadata struct {
	Filename    string
	ContentType string
	SizeKB      float64
	Pages       int
	WordCount   int
}

// SummaryResult is the immutable value returned to the caller after a
// completed summarization. A failed request returns an error instead;
// results are never partially populated.
type SummaryResult struct {
	Summary             string
	Strategy            Strategy
	Tone                Tone
	IsGuest             bool
	Premium             bool
	CharactersProcessed int

	// RemainingUses is the guest quota remainder for the day.
	// Only meaningful when IsGuest is true.
	RemainingUses int

	// RemainingCredits is the account credit balance after the charge.
	// Only meaningful when IsGuest is false.
	RemainingCredits int

	// CompressionRatio is len(summary)/len(input) of the normalized input.
	CompressionRatio float64

	ProcessingTime time.Duration
	FileMetadata   *FileMetadata
	Success        bool
}
