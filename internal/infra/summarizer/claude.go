package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"summarly/internal/resilience/circuitbreaker"
	"summarly/internal/resilience/retry"
	"summarly/internal/utils/text"
)

// ClaudeConfig holds configuration parameters for the Claude backend.
// Configuration is loaded from environment variables with fallback to defaults.
type ClaudeConfig struct {
	// Model is the Claude API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single inference API call.
	Timeout time.Duration

	// RequestsPerSecond caps the sustained API call rate.
	RequestsPerSecond float64

	// Burst is the token bucket burst size for the rate limiter.
	Burst int
}

// LoadClaudeConfig loads configuration from environment variables.
// Invalid values fall back to defaults with a warning log.
//
// Environment variables:
//   - MODEL_NAME: Claude model identifier (default: claude sonnet)
//   - MODEL_API_RPS: sustained request rate (default: 2)
func LoadClaudeConfig() ClaudeConfig {
	cfg := ClaudeConfig{
		Model:             string(anthropic.Model("claude-sonnet-4-5-20250929")),
		MaxTokens:         1024,
		Timeout:           60 * time.Second,
		RequestsPerSecond: 2.0,
		Burst:             4,
	}

	if model := os.Getenv("MODEL_NAME"); model != "" {
		cfg.Model = model
	}
	if rps := loadEnvInt("MODEL_API_RPS", int(cfg.RequestsPerSecond)); rps > 0 {
		cfg.RequestsPerSecond = float64(rps)
	}

	return cfg
}

// Claude implements ModelBackend using Anthropic's Claude API.
// Calls run through a rate limiter, circuit breaker, and retry with backoff.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	limiter         *rate.Limiter
	config          ClaudeConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewClaude creates a Claude backend with the given API key.
func NewClaude(apiKey string) *Claude {
	config := LoadClaudeConfig()

	slog.Info("Initialized Claude backend",
		slog.String("model", config.Model),
		slog.Float64("requests_per_second", config.RequestsPerSecond))

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.ModelAPIConfig(),
		limiter:         rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:          config,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Name implements ModelBackend.
func (c *Claude) Name() string { return "claude" }

// Infer generates a summary of the given text bounded by maxLen/minLen words.
// It uses rate limiting, circuit breaker, and retry logic for reliability.
func (c *Claude) Infer(ctx context.Context, input string, maxLen, minLen int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("claude rate limit wait: %w", err)
	}

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doInfer(ctx, input, maxLen, minLen)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("claude inference failed after retries: %w", retryErr)
	}

	return result, nil
}

// buildSummaryPrompt constructs the summarization prompt shared by the model
// backends. The word bounds mirror the engine's output-length parameters.
func buildSummaryPrompt(input string, maxLen, minLen int) string {
	return fmt.Sprintf(
		"Summarize the following text in between %d and %d words. Respond with only the summary, no preamble.\n%s",
		minLen, maxLen, input)
}

// doInfer performs the actual API call without retry or circuit breaker.
func (c *Claude) doInfer(ctx context.Context, input string, maxLen, minLen int) (string, error) {
	// Unique request ID for tracing
	requestID := uuid.New().String()

	// Truncate to avoid token limits; summarization quality is insensitive
	// to tail loss at this size. Rune-based so a multi-byte character is
	// never split mid-sequence.
	const maxChars = 10000
	truncated := truncateRunes(input, maxChars)
	if truncated != input {
		slog.Warn("text truncated for claude api",
			slog.String("request_id", requestID),
			slog.Int("original_length", len(input)),
			slog.Int("truncated_length", len(truncated)))
	}

	prompt := buildSummaryPrompt(truncated, maxLen, minLen)

	slog.InfoContext(ctx, "Starting model inference",
		slog.String("request_id", requestID),
		slog.Int("input_words", text.CountWords(truncated)),
		slog.Int("max_output_words", maxLen))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Model inference failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		// Surface the status code to the retry classifier: 429 and 5xx
		// from the API are worth another attempt, other 4xx are not.
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude api: %w",
				&retry.HTTPError{StatusCode: apiErr.StatusCode, Message: http.StatusText(apiErr.StatusCode)})
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	summary := textBlock.Text
	summaryWords := text.CountWords(summary)
	withinLimit := summaryWords <= maxLen

	slog.InfoContext(ctx, "Model inference completed",
		slog.String("request_id", requestID),
		slog.Int("summary_words", summaryWords),
		slog.Int("max_output_words", maxLen),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	// Soft limit; the model occasionally overshoots
	if !withinLimit {
		slog.WarnContext(ctx, "Summary exceeds output bound",
			slog.String("request_id", requestID),
			slog.Int("summary_words", summaryWords),
			slog.Int("limit", maxLen))
	}

	c.metricsRecorder.RecordCompliance(withinLimit)
	if !withinLimit {
		c.metricsRecorder.RecordLimitExceeded()
	}

	return summary, nil
}
