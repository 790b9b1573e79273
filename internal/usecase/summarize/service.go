// Package summarize contains the request orchestrator for the summarization
// pipeline. It composes validation, the usage ledger, document extraction,
// normalization, the summarization engines, and tone transformation into one
// request flow.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"summarly/internal/domain/entity"
	"summarly/internal/infra/extractor"
	"summarly/internal/infra/summarizer"
	"summarly/internal/observability/metrics"
	"summarly/internal/utils/text"
)

// Ledger is the usage accounting consulted once per accepted request.
type Ledger interface {
	// CheckAndReserve reserves one use for a guest identity key and returns
	// the remaining uses for the day.
	CheckAndReserve(ctx context.Context, identityKey string) (int, error)

	// Charge decrements one credit from the account and returns the
	// remaining balance.
	Charge(ctx context.Context, accountID int64) (int, error)
}

// Extractor converts uploaded documents into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, format extractor.Format) (*extractor.Result, error)
}

// TaskRunner dispatches CPU-bound work to a bounded worker pool.
// The call blocks until the task completes; the runner only bounds how much
// of this work runs concurrently.
type TaskRunner interface {
	Run(ctx context.Context, name string, task func(context.Context) error) error
}

// Config holds the orchestrator limits.
type Config struct {
	// MaxGuestTextLength caps direct text input for guests, in runes.
	MaxGuestTextLength int

	// MaxFileSize is the maximum accepted upload size in bytes.
	MaxFileSize int64

	// MaxExtractedWordCount truncates extracted text to this many words
	// before summarization. Truncation is silent, not an error.
	MaxExtractedWordCount int

	// Params are the default summarization bounds.
	Params summarizer.Params
}

// DefaultConfig returns the default orchestrator limits.
func DefaultConfig() Config {
	return Config{
		MaxGuestTextLength:    5000,
		MaxFileSize:           10 << 20,
		MaxExtractedWordCount: 5000,
		Params:                summarizer.DefaultParams(),
	}
}

// Service orchestrates one summarization request end to end:
// Received, Validated, QuotaChecked, (Extracted), Normalized, Summarized,
// Toned, Completed. The first error at any step terminates the request; a
// failed request never returns a partial result.
//
// Validation order is significant: invalid input is rejected before the
// ledger is consulted, so a doomed request never consumes a guest's daily
// allowance or an account's credit. A charge applied before a downstream
// failure is not refunded.
type Service struct {
	Ledger    Ledger
	Extractor Extractor
	Pool      TaskRunner
	Engines   map[entity.Strategy]summarizer.Engine
	Config    Config
}

// NewService creates an orchestrator from its collaborators.
func NewService(ledger Ledger, ext Extractor, pool TaskRunner, engines map[entity.Strategy]summarizer.Engine, cfg Config) *Service {
	return &Service{
		Ledger:    ledger,
		Extractor: ext,
		Pool:      pool,
		Engines:   engines,
		Config:    cfg,
	}
}

// SummarizeText runs the pipeline for a direct-text request.
func (s *Service) SummarizeText(ctx context.Context, req entity.SummaryRequest) (*entity.SummaryResult, error) {
	start := time.Now()

	limits := entity.TextLimits{MaxGuestTextLength: s.Config.MaxGuestTextLength}
	if err := entity.ValidateText(req.Text, req.Caller, limits); err != nil {
		return nil, err
	}

	engine, err := s.resolveEngine(req.Strategy)
	if err != nil {
		return nil, err
	}

	remaining, err := s.reserveUsage(ctx, req.Caller)
	if err != nil {
		return nil, err
	}

	result, err := s.process(ctx, req, engine, remaining, nil)
	s.recordOutcome(req, start, err)
	if err != nil {
		return nil, err
	}
	result.ProcessingTime = time.Since(start)
	return result, nil
}

// SummarizeFile runs the pipeline for an uploaded document.
// File validation (format, size) happens before the ledger is consulted;
// extraction runs on the worker pool after the usage is reserved.
func (s *Service) SummarizeFile(ctx context.Context, data []byte, filename, contentType string, strategy entity.Strategy, tone entity.Tone, caller entity.Caller) (*entity.SummaryResult, error) {
	start := time.Now()

	format, err := extractor.DetectFormat(filename, contentType)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.Config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", entity.ErrPayloadTooLarge, len(data), s.Config.MaxFileSize)
	}

	engine, err := s.resolveEngine(strategy)
	if err != nil {
		return nil, err
	}

	remaining, err := s.reserveUsage(ctx, caller)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extract(ctx, data, format)
	if err != nil {
		s.recordOutcome(entity.SummaryRequest{Strategy: strategy, Caller: caller}, start, err)
		return nil, err
	}

	meta := &entity.FileMetadata{
		Filename:    filename,
		ContentType: contentType,
		SizeKB:      float64(len(data)) / 1024,
		Pages:       extracted.Pages,
		WordCount:   text.CountWords(extracted.Text),
	}

	req := entity.SummaryRequest{
		Text:     text.CapWords(extracted.Text, s.Config.MaxExtractedWordCount),
		Strategy: strategy,
		Tone:     tone,
		Caller:   caller,
	}

	result, err := s.process(ctx, req, engine, remaining, meta)
	s.recordOutcome(req, start, err)
	if err != nil {
		return nil, err
	}
	result.ProcessingTime = time.Since(start)
	return result, nil
}

// reserveUsage consults the ledger for the caller's tier.
// Guests reserve one of their daily uses; accounts are charged one credit.
func (s *Service) reserveUsage(ctx context.Context, caller entity.Caller) (int, error) {
	if caller.IsGuest() {
		remaining, err := s.Ledger.CheckAndReserve(ctx, caller.IdentityKey)
		if err != nil {
			if isLedgerDenial(err) {
				metrics.RecordQuotaRejection("guest")
			}
			return 0, err
		}
		return remaining, nil
	}

	remaining, err := s.Ledger.Charge(ctx, caller.Account.ID)
	if err != nil {
		if isLedgerDenial(err) {
			metrics.RecordQuotaRejection("account")
		}
		return 0, err
	}
	metrics.RecordCreditCharged()
	return remaining, nil
}

// extract runs document extraction on the worker pool.
func (s *Service) extract(ctx context.Context, data []byte, format extractor.Format) (*extractor.Result, error) {
	var result *extractor.Result
	start := time.Now()
	err := s.Pool.Run(ctx, "extract_"+string(format), func(taskCtx context.Context) error {
		var taskErr error
		result, taskErr = s.Extractor.Extract(taskCtx, data, format)
		return taskErr
	})
	metrics.RecordExtraction(string(format), time.Since(start), err == nil, extractedSize(result))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveEngine maps a strategy to its engine. Both entry points resolve
// before consulting the ledger, so a request for a strategy with no engine
// never consumes a guest use or an account credit.
func (s *Service) resolveEngine(strategy entity.Strategy) (summarizer.Engine, error) {
	engine, ok := s.Engines[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: no engine for strategy %q", entity.ErrEngineUnavailable, strategy)
	}
	return engine, nil
}

// process covers the Normalized through Toned steps shared by both entry
// points. Usage has already been reserved at this point; failures from here
// on are not refunded.
func (s *Service) process(ctx context.Context, req entity.SummaryRequest, engine summarizer.Engine, remaining int, meta *entity.FileMetadata) (*entity.SummaryResult, error) {
	normalized := text.Normalize(req.Text)
	if normalized == "" {
		return nil, entity.ErrEmptyInput
	}

	var summary string
	err := s.Pool.Run(ctx, "summarize_"+string(req.Strategy), func(taskCtx context.Context) error {
		var taskErr error
		summary, taskErr = engine.Summarize(taskCtx, normalized, s.Config.Params)
		return taskErr
	})
	if err != nil {
		return nil, err
	}

	toned := summarizer.ApplyTone(summary, req.Tone)

	inputRunes := text.CountRunes(normalized)
	result := &entity.SummaryResult{
		Summary:             toned,
		Strategy:            req.Strategy,
		Tone:                req.Tone,
		IsGuest:             req.Caller.IsGuest(),
		Premium:             !req.Caller.IsGuest(),
		CharactersProcessed: inputRunes,
		CompressionRatio:    compressionRatio(toned, inputRunes),
		FileMetadata:        meta,
		Success:             true,
	}
	if result.IsGuest {
		result.RemainingUses = remaining
	} else {
		result.RemainingCredits = remaining
	}
	return result, nil
}

// recordOutcome emits the per-request business metrics and finishes the
// result's processing time.
func (s *Service) recordOutcome(req entity.SummaryRequest, start time.Time, err error) {
	elapsed := time.Since(start)
	tier := "account"
	if req.Caller.IsGuest() {
		tier = "guest"
	}
	metrics.RecordSummaryRequest(string(req.Strategy), tier, err == nil)
	metrics.RecordSummaryRequestDuration(elapsed)
	if err != nil {
		slog.Warn("summarization request failed",
			slog.String("strategy", string(req.Strategy)),
			slog.String("tier", tier),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err))
	}
}

// isLedgerDenial reports whether the ledger refused the request for quota
// or balance reasons, as opposed to an infrastructure failure.
func isLedgerDenial(err error) bool {
	return errors.Is(err, entity.ErrQuotaExhausted) ||
		errors.Is(err, entity.ErrInsufficientCredits) ||
		errors.Is(err, entity.ErrAccountInactive) ||
		errors.Is(err, entity.ErrAccountNotFound)
}

func extractedSize(result *extractor.Result) int {
	if result == nil {
		return 0
	}
	return len(result.Text)
}

func compressionRatio(summary string, inputRunes int) float64 {
	if inputRunes == 0 {
		return 0
	}
	return float64(text.CountRunes(summary)) / float64(inputRunes)
}
