package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-abc")
	assert.Equal(t, "req-abc", FromContext(ctx))
	assert.Empty(t, FromContext(context.Background()))
}

func serveWithCapture(req *http.Request) (capturedID string, rec *httptest.ResponseRecorder) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return capturedID, rec
}

func TestMiddleware_AdoptsClientSuppliedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/summarize", nil)
	req.Header.Set(Header, "client-supplied-7")

	capturedID, rec := serveWithCapture(req)

	assert.Equal(t, "client-supplied-7", capturedID)
	assert.Equal(t, "client-supplied-7", rec.Header().Get(Header))
}

func TestMiddleware_MintsUUIDWhenHeaderAbsent(t *testing.T) {
	capturedID, rec := serveWithCapture(httptest.NewRequest(http.MethodPost, "/summarize", nil))

	_, err := uuid.Parse(capturedID)
	assert.NoError(t, err, "minted ID must be a valid UUID")
	assert.Equal(t, capturedID, rec.Header().Get(Header), "context and response header must carry the same ID")
}

func TestMiddleware_IDsAreUniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, _ := serveWithCapture(httptest.NewRequest(http.MethodPost, "/summarize", nil))
		seen[id] = true
	}
	assert.Len(t, seen, 10)
}
