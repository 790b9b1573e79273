package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func getHealth(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(sqlmock.Sqlmock)
		wantCode   int
		wantStatus string
	}{
		{
			name:       "database reachable",
			setupMock:  func(mock sqlmock.Sqlmock) { mock.ExpectPing() },
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "database down",
			setupMock:  func(mock sqlmock.Sqlmock) { mock.ExpectPing().WillReturnError(sql.ErrConnDone) },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setupMock(mock)

			rec, resp := getHealth(t, &HealthHandler{DB: db, Version: "v-test"}, "/healthz")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "v-test", resp.Version)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Contains(t, resp.Checks, "database")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_NoDatabaseConfigured(t *testing.T) {
	rec, resp := getHealth(t, &HealthHandler{Version: "v-test"}, "/healthz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "not configured", resp.Checks["database"].Message)
}

func TestHealthHandler_UnboundedPoolIsDegraded(t *testing.T) {
	db, mock := newMockDB(t)
	db.SetMaxOpenConns(0)
	mock.ExpectPing()

	rec, resp := getHealth(t, &HealthHandler{DB: db, Version: "v-test"}, "/healthz")

	// Reachable database keeps the service operational even when the pool
	// configuration is flagged
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", resp.Status)

	dbCheck := resp.Checks["database"]
	assert.Equal(t, "degraded", dbCheck.Status)
	assert.NotContains(t, dbCheck.Details, "utilization_percent",
		"utilization is undefined without a pool bound")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_ReportsPoolUtilization(t *testing.T) {
	db, mock := newMockDB(t)
	db.SetMaxOpenConns(10)
	mock.ExpectPing()

	rec, resp := getHealth(t, &HealthHandler{DB: db, Version: "v-test"}, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	dbCheck := resp.Checks["database"]
	assert.Equal(t, "healthy", dbCheck.Status)
	assert.Equal(t, float64(10), dbCheck.Details["max_open_connections"])
	assert.Contains(t, dbCheck.Details, "utilization_percent")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_ResponseHeaders(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	rec, _ := getHealth(t, &HealthHandler{DB: db, Version: "v-test"}, "/healthz")

	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadyHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", rec.Body.String())
	})

	t.Run("database not ready", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no database configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "database not configured")
	})

	t.Run("slow ping times out", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing().WillDelayFor(3 * time.Second)

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&LiveHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
