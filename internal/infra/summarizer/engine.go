// Package summarizer provides the summarization engines behind the pipeline.
// Two strategies are available: abstractive (model-backed, via the Claude or
// OpenAI APIs) and extractive (statistical sentence ranking, fully local).
// Both are exposed through the Engine interface; post-hoc tone styling lives
// in tone.go. Model backends carry circuit breaker, retry, and rate limiting
// for reliability, with observability through structured logging and
// Prometheus metrics.
package summarizer

import (
	"context"

	"summarly/internal/domain/entity"
)

// Params bounds a single summarization.
type Params struct {
	// MaxOutputLength is the upper bound on abstractive summary length,
	// and the truncation length for the short-input fast path.
	MaxOutputLength int

	// MinOutputLength is the lower bound on abstractive summary length.
	MinOutputLength int

	// SentenceCount is how many sentences an extractive summary keeps.
	SentenceCount int
}

// DefaultParams returns the default summarization bounds.
func DefaultParams() Params {
	return Params{
		MaxOutputLength: 130,
		MinOutputLength: 30,
		SentenceCount:   3,
	}
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	defaults := DefaultParams()
	if p.MaxOutputLength <= 0 {
		p.MaxOutputLength = defaults.MaxOutputLength
	}
	if p.MinOutputLength <= 0 {
		p.MinOutputLength = defaults.MinOutputLength
	}
	if p.SentenceCount <= 0 {
		p.SentenceCount = defaults.SentenceCount
	}
	return p
}

// Engine produces a summary for normalized input text.
//
// Implementations fail with entity.ErrEmptyInput when the text is blank,
// entity.ErrEngineUnavailable when their backing resource failed to
// initialize, and entity.ErrSummarization (cause preserved) for any
// downstream failure. A failed call never returns a partial summary.
type Engine interface {
	Summarize(ctx context.Context, text string, params Params) (string, error)
	Strategy() entity.Strategy
}

// ModelBackend is a sequence-to-sequence summarization model exposed over an
// API. Infer returns the model's summary of text bounded by maxLen/minLen
// words. Backends are safe for concurrent use.
type ModelBackend interface {
	Infer(ctx context.Context, text string, maxLen, minLen int) (string, error)
	Name() string
}
