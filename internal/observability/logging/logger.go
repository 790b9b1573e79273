package logging

import (
	"context"
	"log/slog"
	"os"

	"summarly/internal/handler/http/requestid"
)

// NewLogger creates the process-wide JSON logger. Set LOG_LEVEL=debug for
// verbose output; anything else logs at info. Warnings and errors carry
// their source location.
func NewLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel <= slog.LevelWarn,
	})

	return slog.New(handler)
}

// WithRequestID returns a logger carrying the request ID from the context,
// so every entry a handler writes for one summarization request is
// correlatable. Without a request ID the logger is returned unchanged.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
