package repository

import (
	"context"

	"summarly/internal/domain/entity"
)

// AccountRepository provides access to persisted accounts and their credit
// balances. Charge must be atomic: concurrent charges against the same
// account may never drive the balance below zero.
type AccountRepository interface {
	Get(ctx context.Context, id int64) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Charge decrements the account's credit balance by one and returns the
	// new balance. It fails with entity.ErrInsufficientCredits when the
	// pre-charge balance is not strictly positive, entity.ErrAccountInactive
	// for disabled accounts, and entity.ErrAccountNotFound for unknown ids.
	Charge(ctx context.Context, id int64) (remaining int, err error)
}
