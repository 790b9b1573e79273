// Package ledger provides per-caller usage accounting: daily quota counting
// for guests and credit charging for accounts.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"summarly/internal/domain/entity"
	"summarly/internal/repository"
	"summarly/pkg/quota"
)

// Service is the usage ledger. It owns the guest quota store and the account
// repository; the orchestrator consults it exactly once per accepted request,
// after validation and before any expensive work.
type Service struct {
	Quota      quota.Store
	Accounts   repository.AccountRepository
	DailyLimit int
}

// NewService creates a ledger with the given quota store, account repository,
// and guest daily limit.
func NewService(store quota.Store, accounts repository.AccountRepository, dailyLimit int) Service {
	return Service{
		Quota:      store,
		Accounts:   accounts,
		DailyLimit: dailyLimit,
	}
}

// CheckAndReserve reserves one summarization for a guest identity key.
// Returns the number of uses remaining today after the reservation.
//
// The limit check and the increment are a single atomic unit inside the
// quota store, so concurrent requests from the same identity can never
// jointly exceed the daily limit. When the limit is reached it returns
// entity.ErrQuotaExhausted (via quota denial) without mutating state.
func (s *Service) CheckAndReserve(ctx context.Context, identityKey string) (int, error) {
	allowed, count, err := s.Quota.CheckAndIncrement(ctx, identityKey, s.DailyLimit)
	if err != nil {
		return 0, fmt.Errorf("CheckAndReserve: %w", err)
	}
	if !allowed {
		slog.InfoContext(ctx, "guest quota exhausted",
			slog.String("identity_key", identityKey),
			slog.Int("daily_limit", s.DailyLimit))
		return 0, entity.ErrQuotaExhausted
	}
	return s.DailyLimit - count, nil
}

// Charge decrements one credit from the account and returns the remaining
// balance. The decrement is atomic and persisted before the caller proceeds;
// it is not refunded if the summarization later fails.
func (s *Service) Charge(ctx context.Context, accountID int64) (int, error) {
	remaining, err := s.Accounts.Charge(ctx, accountID)
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "account charged",
		slog.Int64("account_id", accountID),
		slog.Int("remaining_credits", remaining))
	return remaining, nil
}
