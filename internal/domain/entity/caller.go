package entity

// Account represents an authenticated caller with a persisted credit balance.
// Credits are decremented once per accepted summarization; the balance never
// goes below zero.
type Account struct {
	ID      int64
	Email   string
	Credits int
	Active  bool
}

// Caller identifies who is asking for a summarization.
// A caller is either a guest (identified only by a network-origin key, subject
// to a daily count limit) or an account (charged per summarization).
type Caller struct {
	// IdentityKey is the quota bucketing key for guests, typically the
	// client IP. Empty for account callers.
	IdentityKey string

	// Account is nil for guest callers.
	Account *Account
}

// GuestCaller returns a guest caller bucketed by the given identity key.
func GuestCaller(identityKey string) Caller {
	return Caller{IdentityKey: identityKey}
}

// AccountCaller returns a caller backed by an authenticated account.
func AccountCaller(account *Account) Caller {
	return Caller{Account: account}
}

// IsGuest reports whether the caller is unauthenticated.
func (c Caller) IsGuest() bool {
	return c.Account == nil
}
