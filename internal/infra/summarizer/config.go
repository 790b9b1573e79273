package summarizer

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

const (
	// minOutputFloor is the smallest accepted MaxOutputLength.
	minOutputFloor = 30

	// maxOutputCeiling is the largest accepted MaxOutputLength.
	maxOutputCeiling = 2000

	// maxSentenceCount is the largest accepted extractive sentence count.
	maxSentenceCount = 20
)

// ValidateParams checks that the summarization bounds are coherent.
func ValidateParams(p Params) error {
	if p.MaxOutputLength < minOutputFloor || p.MaxOutputLength > maxOutputCeiling {
		return fmt.Errorf("max output length %d outside valid range %d-%d",
			p.MaxOutputLength, minOutputFloor, maxOutputCeiling)
	}
	if p.MinOutputLength <= 0 || p.MinOutputLength >= p.MaxOutputLength {
		return fmt.Errorf("min output length %d must be positive and below max %d",
			p.MinOutputLength, p.MaxOutputLength)
	}
	if p.SentenceCount < 1 || p.SentenceCount > maxSentenceCount {
		return fmt.Errorf("sentence count %d outside valid range 1-%d",
			p.SentenceCount, maxSentenceCount)
	}
	return nil
}

// LoadParams loads summarization bounds from environment variables.
// Invalid values fall back to the defaults with a warning log (fail-open).
//
// Environment variables:
//   - SUMMARIZER_MAX_OUTPUT_LENGTH: default 130, range 30-2000
//   - SUMMARIZER_MIN_OUTPUT_LENGTH: default 30, must be below max
//   - SUMMARIZER_SENTENCE_COUNT: default 3, range 1-20
func LoadParams() Params {
	params := DefaultParams()

	params.MaxOutputLength = loadEnvInt("SUMMARIZER_MAX_OUTPUT_LENGTH", params.MaxOutputLength)
	params.MinOutputLength = loadEnvInt("SUMMARIZER_MIN_OUTPUT_LENGTH", params.MinOutputLength)
	params.SentenceCount = loadEnvInt("SUMMARIZER_SENTENCE_COUNT", params.SentenceCount)

	if err := ValidateParams(params); err != nil {
		slog.Warn("invalid summarizer parameters, using defaults",
			slog.String("error", err.Error()))
		return DefaultParams()
	}
	return params
}

// loadEnvInt reads an integer environment variable, falling back to def on
// absence or parse failure.
func loadEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", def))
		return def
	}
	return parsed
}
