package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware that bounds how long one request may run.
// Summarization requests can stall on document extraction or a slow model
// API; past the deadline the client gets 504 and the request context is
// canceled so downstream work stops.
//
// The handler runs in its own goroutine. A guarded writer ensures exactly
// one side, handler or deadline, writes the response.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			gw := &guardedWriter{inner: w}
			done := make(chan struct{})

			go func() {
				next.ServeHTTP(gw, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				gw.writeTimeout()
			}
		})
	}
}

// guardedWriter serializes writes between the handler goroutine and the
// deadline path. After the timeout response is sent, handler writes are
// dropped with http.ErrHandlerTimeout.
type guardedWriter struct {
	inner http.ResponseWriter

	mu       sync.Mutex
	wrote    bool
	timedOut bool
}

func (g *guardedWriter) Header() http.Header {
	return g.inner.Header()
}

func (g *guardedWriter) WriteHeader(statusCode int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timedOut || g.wrote {
		return
	}
	g.wrote = true
	g.inner.WriteHeader(statusCode)
}

func (g *guardedWriter) Write(data []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !g.wrote {
		g.wrote = true
		g.inner.WriteHeader(http.StatusOK)
	}
	return g.inner.Write(data)
}

// writeTimeout sends the 504 body unless the handler already responded.
func (g *guardedWriter) writeTimeout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timedOut = true
	if g.wrote {
		return
	}
	g.inner.Header().Set("Content-Type", "application/json")
	g.inner.WriteHeader(http.StatusGatewayTimeout)
	_, _ = g.inner.Write([]byte(`{"error":"request timeout"}`))
}
