package summarizer

import (
	"context"

	"summarly/internal/utils/text"
)

// NoOp is a model backend that truncates instead of summarizing.
// It is useful for development and tests where no API key is available.
type NoOp struct{}

// NewNoOp creates a new NoOp backend.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Name implements ModelBackend.
func (n *NoOp) Name() string { return "noop" }

// Infer returns the first maxLen words of the input, with an ellipsis when
// anything was cut. Deterministic, so tests can assert on exact output.
func (n *NoOp) Infer(_ context.Context, input string, maxLen, _ int) (string, error) {
	capped := text.CapWords(input, maxLen)
	if capped != input {
		capped += "..."
	}
	return capped, nil
}
