package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"summarly/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// httpRequestsInFlight tracks the current number of HTTP requests being processed.
// This metric helps identify:
// - Load levels and capacity
// - Request queuing issues
// - Potential bottlenecks
var httpRequestsInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	},
)

// knownPaths is the fixed route set exposed by the server. Anything else is
// folded into "other" to keep label cardinality bounded.
var knownPaths = []string{
	"/summarize/file",
	"/summarize",
	"/healthz",
	"/ready",
	"/live",
	"/metrics",
}

// normalizePath maps a request path onto the route set for metric labels.
func normalizePath(path string) string {
	for _, known := range knownPaths {
		if path == known || strings.HasPrefix(path, known+"/") {
			return known
		}
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to record status code and response size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// MetricsMiddleware records HTTP request metrics including duration, size, and status codes.
// It normalizes paths onto the known route set to prevent label cardinality explosion.
// The middleware tracks:
// - In-flight requests (gauge incremented/decremented per request)
// - Request duration
// - Request and response sizes
// - Status code distribution
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Track in-flight requests
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Track active connections
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		normalizedPath := normalizePath(r.URL.Path)

		// Wrap response writer to capture status code and response size
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Measure request duration
		start := time.Now()
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		requestSize := 0
		if r.ContentLength > 0 {
			requestSize = int(r.ContentLength)
		}

		status := strconv.Itoa(rw.statusCode)
		metrics.RecordHTTPRequest(r.Method, normalizedPath, status, duration, requestSize, rw.size)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
