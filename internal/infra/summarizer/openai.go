package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"summarly/internal/resilience/circuitbreaker"
	"summarly/internal/resilience/retry"
	"summarly/internal/utils/text"
)

// OpenAIConfig holds configuration parameters for the OpenAI backend.
type OpenAIConfig struct {
	// Model is the OpenAI API model identifier.
	Model string

	// Timeout is the maximum duration for a single inference API call.
	Timeout time.Duration

	// RequestsPerSecond caps the sustained API call rate.
	RequestsPerSecond float64

	// Burst is the token bucket burst size for the rate limiter.
	Burst int
}

// Validate checks the configuration and returns an error if invalid.
func (c *OpenAIConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %f", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("burst must be positive, got %d", c.Burst)
	}
	return nil
}

// LoadOpenAIConfig loads configuration from environment variables.
// Unlike the Claude loader this is fail-closed: an invalid configuration is
// returned as an error rather than silently replaced.
//
// Environment variables:
//   - MODEL_NAME: OpenAI model identifier (default: gpt-4o-mini)
//   - MODEL_API_RPS: sustained request rate (default: 2)
func LoadOpenAIConfig() (*OpenAIConfig, error) {
	config := &OpenAIConfig{
		Model:             "gpt-4o-mini",
		Timeout:           60 * time.Second,
		RequestsPerSecond: 2.0,
		Burst:             4,
	}

	if model := os.Getenv("MODEL_NAME"); model != "" {
		config.Model = model
	}
	if rps := loadEnvInt("MODEL_API_RPS", int(config.RequestsPerSecond)); rps > 0 {
		config.RequestsPerSecond = float64(rps)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OpenAI configuration: %w", err)
	}

	return config, nil
}

// OpenAI implements ModelBackend using OpenAI's chat completion API.
// Calls run through a rate limiter, circuit breaker, and retry with backoff.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	limiter         *rate.Limiter
	config          *OpenAIConfig
	metricsRecorder SummaryMetricsRecorder
}

// NewOpenAI creates an OpenAI backend with the given API key.
func NewOpenAI(apiKey string, config *OpenAIConfig) *OpenAI {
	slog.Info("Initialized OpenAI backend",
		slog.String("model", config.Model),
		slog.Float64("requests_per_second", config.RequestsPerSecond))

	return &OpenAI{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.ModelAPIConfig(),
		limiter:         rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:          config,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Name implements ModelBackend.
func (o *OpenAI) Name() string { return "openai" }

// Infer generates a summary of the given text bounded by maxLen/minLen words.
func (o *OpenAI) Infer(ctx context.Context, input string, maxLen, minLen int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("openai rate limit wait: %w", err)
	}

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doInfer(ctx, input, maxLen, minLen)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("openai inference failed after retries: %w", retryErr)
	}

	return result, nil
}

// doInfer performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doInfer(ctx context.Context, input string, maxLen, minLen int) (string, error) {
	// Truncate to stay well inside the model context window. Rune-based so
	// a multi-byte character is never split mid-sequence.
	const maxChars = 10000
	truncated := truncateRunes(input, maxChars)
	if truncated != input {
		slog.Warn("text truncated for openai api",
			slog.Int("original_length", len(input)),
			slog.Int("truncated_length", len(truncated)))
	}

	prompt := buildSummaryPrompt(truncated, maxLen, minLen)

	slog.InfoContext(ctx, "Starting model inference",
		slog.Int("input_words", text.CountWords(truncated)),
		slog.Int("max_output_words", maxLen))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    "system",
			Content: prompt,
		}},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Model inference failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		// Surface the status code to the retry classifier: 429 and 5xx
		// from the API are worth another attempt, other 4xx are not.
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai api: %w",
				&retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: http.StatusText(apiErr.HTTPStatusCode)})
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Safety check to prevent panic on array access
	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	summary := resp.Choices[0].Message.Content
	summaryWords := text.CountWords(summary)
	withinLimit := summaryWords <= maxLen

	slog.InfoContext(ctx, "Model inference completed",
		slog.Int("summary_words", summaryWords),
		slog.Int("max_output_words", maxLen),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	if !withinLimit {
		slog.WarnContext(ctx, "Summary exceeds output bound",
			slog.Int("summary_words", summaryWords),
			slog.Int("limit", maxLen))
	}

	o.metricsRecorder.RecordCompliance(withinLimit)
	if !withinLimit {
		o.metricsRecorder.RecordLimitExceeded()
	}

	return summary, nil
}
