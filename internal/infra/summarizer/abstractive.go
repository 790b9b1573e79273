package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"summarly/internal/domain/entity"
	"summarly/internal/utils/text"
)

// minInputWords is the threshold below which the model is skipped.
// Very short inputs produce degenerate model output, so they are truncated
// directly instead.
const minInputWords = 30

// Abstractive is the model-backed summarization engine.
// The backend is constructed lazily on first use: backend setup is the
// expensive part (client construction, credential checks), and the guard
// ensures concurrent first callers share a single initialization instead of
// racing. A failed initialization is permanent for the process lifetime and
// surfaces as entity.ErrEngineUnavailable on every call.
type Abstractive struct {
	newBackend func() (ModelBackend, error)

	initOnce sync.Once
	backend  ModelBackend
	initErr  error

	metricsRecorder SummaryMetricsRecorder
}

// NewAbstractive creates an abstractive engine whose backend is built by
// newBackend on first use. A nil metrics recorder disables instrumentation.
func NewAbstractive(newBackend func() (ModelBackend, error), metrics SummaryMetricsRecorder) *Abstractive {
	if metrics == nil {
		metrics = NoOpSummaryMetrics{}
	}
	return &Abstractive{
		newBackend:      newBackend,
		metricsRecorder: metrics,
	}
}

// Strategy implements Engine.
func (a *Abstractive) Strategy() entity.Strategy {
	return entity.StrategyAbstractive
}

// Summarize generates an abstractive summary of the given text.
// Inputs shorter than minInputWords skip the model entirely and are
// truncated to params.MaxOutputLength characters with a trailing ellipsis.
func (a *Abstractive) Summarize(ctx context.Context, input string, params Params) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", entity.ErrEmptyInput
	}
	params = params.withDefaults()

	// Short-input fast path: no backend needed at all
	if text.CountWords(input) < minInputWords {
		return truncateRunes(input, params.MaxOutputLength), nil
	}

	backend, err := a.initBackend()
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrEngineUnavailable, err)
	}

	start := time.Now()
	summary, err := backend.Infer(ctx, input, params.MaxOutputLength, params.MinOutputLength)
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "abstractive summarization failed",
			slog.String("backend", backend.Name()),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", entity.ErrSummarization, err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("%w: backend returned empty summary", entity.ErrSummarization)
	}

	summaryLength := text.CountRunes(summary)
	a.metricsRecorder.RecordLength(summaryLength)
	a.metricsRecorder.RecordDuration(duration)
	return summary, nil
}

// initBackend performs the one-time backend construction.
func (a *Abstractive) initBackend() (ModelBackend, error) {
	a.initOnce.Do(func() {
		a.backend, a.initErr = a.newBackend()
		if a.initErr != nil {
			slog.Error("abstractive backend initialization failed",
				slog.Any("error", a.initErr))
			return
		}
		slog.Info("abstractive backend initialized",
			slog.String("backend", a.backend.Name()))
	})
	return a.backend, a.initErr
}

// truncateRunes cuts s to at most limit runes, appending an ellipsis when
// anything was cut.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
