package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"summarly/internal/domain/entity"
	"summarly/internal/observability/metrics"
	"summarly/internal/repository"
)

// Querier is the subset of *sql.DB the repository needs.
// Both *sql.DB and the database circuit breaker satisfy it.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type AccountRepo struct{ db Querier }

func NewAccountRepo(db Querier) repository.AccountRepository {
	return &AccountRepo{db: db}
}

// scanAccount is a helper function to scan an account row.
func scanAccount(row *sql.Row) (*entity.Account, error) {
	var account entity.Account
	if err := row.Scan(&account.ID, &account.Email, &account.Credits, &account.Active); err != nil {
		return nil, err
	}
	return &account, nil
}

func (repo *AccountRepo) Get(ctx context.Context, id int64) (*entity.Account, error) {
	const query = `
SELECT id, email, credits, active
FROM accounts
WHERE id = $1
LIMIT 1`
	start := time.Now()
	account, err := scanAccount(repo.db.QueryRowContext(ctx, query, id))
	metrics.RecordDBQuery("get_account", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return account, nil
}

func (repo *AccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	const query = `
SELECT id, email, credits, active
FROM accounts
WHERE email = $1
LIMIT 1`
	start := time.Now()
	account, err := scanAccount(repo.db.QueryRowContext(ctx, query, email))
	metrics.RecordDBQuery("get_account_by_email", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return account, nil
}

// Charge decrements the credit balance by one in a single conditional UPDATE.
// The WHERE clause guards the decrement, so two concurrent charges against a
// balance of 1 resolve to exactly one success; the balance can never go
// negative regardless of interleaving.
func (repo *AccountRepo) Charge(ctx context.Context, id int64) (int, error) {
	const query = `
UPDATE accounts
SET credits = credits - 1
WHERE id = $1 AND active AND credits > 0
RETURNING credits`
	var remaining int
	start := time.Now()
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&remaining)
	metrics.RecordDBQuery("charge_credits", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		// The guarded UPDATE matched nothing; look up the account to report
		// which precondition failed.
		account, getErr := repo.Get(ctx, id)
		if getErr != nil {
			return 0, fmt.Errorf("Charge: %w", getErr)
		}
		if !account.Active {
			return 0, entity.ErrAccountInactive
		}
		return 0, entity.ErrInsufficientCredits
	}
	if err != nil {
		return 0, fmt.Errorf("Charge: %w", err)
	}
	return remaining, nil
}
