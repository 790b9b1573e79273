package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedDB(t *testing.T, cfg Config) (*DBCircuitBreaker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBCircuitBreakerWithConfig(db, cfg), mock
}

func TestDBCircuitBreaker_ExecContext(t *testing.T) {
	dcb, mock := newGuardedDB(t, DBConfig())

	mock.ExpectExec("UPDATE accounts SET active").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := dcb.ExecContext(context.Background(),
		"UPDATE accounts SET active = false WHERE id = $1", int64(42))
	require.NoError(t, err)

	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_SingleFailureStaysClosed(t *testing.T) {
	dcb, mock := newGuardedDB(t, DBConfig())

	mock.ExpectExec("UPDATE accounts").WillReturnError(errors.New("connection refused"))

	_, err := dcb.ExecContext(context.Background(),
		"UPDATE accounts SET credits = credits - 1 WHERE id = $1", int64(1))
	assert.Error(t, err)
	assert.False(t, dcb.IsOpen(), "one failure must not trip the circuit")
}

func TestDBCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cfg := DBConfig()
	cfg.Timeout = 100 * time.Millisecond
	dcb, mock := newGuardedDB(t, cfg)
	ctx := context.Background()

	connErr := errors.New("connection refused")
	for i := 0; i < 5; i++ {
		mock.ExpectExec("UPDATE accounts").WillReturnError(connErr)
	}
	for i := 0; i < 5; i++ {
		_, err := dcb.ExecContext(ctx,
			"UPDATE accounts SET credits = credits - 1 WHERE id = $1", int64(1))
		require.Error(t, err, "attempt %d", i+1)
	}

	require.True(t, dcb.IsOpen(), "5 consecutive failures must open the circuit")

	// Open circuit rejects without reaching the database; no further mock
	// expectations are registered.
	_, err := dcb.ExecContext(ctx,
		"UPDATE accounts SET credits = credits - 1 WHERE id = $1", int64(1))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	cfg := DBConfig()
	cfg.Timeout = 50 * time.Millisecond
	dcb, mock := newGuardedDB(t, cfg)
	ctx := context.Background()

	connErr := errors.New("connection refused")
	for i := 0; i < 5; i++ {
		mock.ExpectExec("UPDATE accounts").WillReturnError(connErr)
		_, _ = dcb.ExecContext(ctx,
			"UPDATE accounts SET credits = credits - 1 WHERE id = $1", int64(1))
	}
	require.True(t, dcb.IsOpen())

	time.Sleep(100 * time.Millisecond)

	mock.ExpectExec("UPDATE accounts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := dcb.ExecContext(ctx,
		"UPDATE accounts SET credits = credits - 1 WHERE id = $1", int64(1))
	assert.NoError(t, err, "half-open probe should reach the database again")
}

func TestDBCircuitBreaker_QueryRowContextBypassesBreaker(t *testing.T) {
	dcb, mock := newGuardedDB(t, DBConfig())

	rows := sqlmock.NewRows([]string{"credits"}).AddRow(7)
	mock.ExpectQuery("SELECT credits FROM accounts").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	var credits int
	err := dcb.QueryRowContext(context.Background(),
		"SELECT credits FROM accounts WHERE id = $1", int64(42)).Scan(&credits)
	require.NoError(t, err)
	assert.Equal(t, 7, credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_DBExposesRawConnection(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dcb := NewDBCircuitBreaker(db)
	assert.Same(t, db, dcb.DB())
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()

	assert.Equal(t, "database", cfg.Name)
	assert.Equal(t, uint32(3), cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 1.0, cfg.FailureThreshold)
}
