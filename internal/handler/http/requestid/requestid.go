// Package requestid tags every request with a correlation ID so a single
// summarization can be followed across the access log, the handler's
// completion entry, and the trace span.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is where clients may supply their own correlation ID and where the
// service echoes the effective one back.
const Header = "X-Request-ID"

type contextKey struct{}

// FromContext returns the request ID carried by ctx, or "" when the request
// never passed through Middleware.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID attaches a request ID to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware adopts the client-supplied X-Request-ID or mints a UUID v4 when
// the header is absent. The effective ID goes into both the request context
// and the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(Header, requestID)

		ctx := WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
