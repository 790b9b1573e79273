// Package responsewriter observes what a handler wrote so the access log and
// the Prometheus middleware can record status and response size without the
// handlers cooperating.
package responsewriter

import (
	"net/http"
)

// ResponseWriter records the status code and body size passing through it.
// The zero status is 200, matching net/http's implicit WriteHeader.
type ResponseWriter struct {
	http.ResponseWriter

	statusCode    int
	bytesWritten  int
	headerWritten bool
}

// Wrap instruments w.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the first status code; repeated calls are dropped the
// way net/http warns about superfluous WriteHeader.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write forwards the body and accumulates its size.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// StatusCode returns the status the handler responded with.
func (w *ResponseWriter) StatusCode() int {
	return w.statusCode
}

// BytesWritten returns the response body size so far.
func (w *ResponseWriter) BytesWritten() int {
	return w.bytesWritten
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
