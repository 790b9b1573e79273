package http

import (
	"net/http"
)

// maxAuthHeaderBytes leaves ample headroom over a typical JWT.
const maxAuthHeaderBytes = 8192

// maxPathBytes caps the request path; the service exposes a handful of
// short routes.
const maxPathBytes = 2048

// InputValidation rejects structurally oversized requests before any handler
// runs: Authorization headers over 8KB, paths over 2KB, and bodies over
// maxBodyBytes (enforced lazily via http.MaxBytesReader as the body is read).
func InputValidation(maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthHeaderBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"authorization header too large"}`))
				return
			}

			if len(r.URL.Path) > maxPathBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
