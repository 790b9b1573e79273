package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/summarize", want: "/summarize"},
		{path: "/summarize/file", want: "/summarize/file"},
		{path: "/healthz", want: "/healthz"},
		{path: "/ready", want: "/ready"},
		{path: "/live", want: "/live"},
		{path: "/metrics", want: "/metrics"},
		{path: "/unknown/route", want: "other"},
		{path: "/", want: "other"},
		{path: "/summarizex", want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "200 OK", status: http.StatusOK},
		{name: "402 payment required", status: http.StatusPaymentRequired},
		{name: "429 too many requests", status: http.StatusTooManyRequests},
		{name: "500 internal error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(`{"text":"x"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("got status %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestMetricsMiddleware_ResponseSize(t *testing.T) {
	body := strings.Repeat("s", 512)
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Body.Len() != len(body) {
		t.Errorf("response body length = %d, want %d", rr.Body.Len(), len(body))
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	n, err := rw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 || rw.size != 5 {
		t.Errorf("size = %d (n=%d), want 5", rw.size, n)
	}
	if rw.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusTeapot)
	}
}

func TestMetricsHandler(t *testing.T) {
	handler := MetricsHandler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("metrics endpoint returned empty body")
	}
}
