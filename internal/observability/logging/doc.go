// Package logging configures the service's structured logger on top of the
// standard library's log/slog and ties log entries to the request ID minted
// by the middleware chain.
//
// Example usage:
//
//	import "summarly/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("processing summarization request")
//	}
package logging
