// Package quota provides framework-agnostic daily usage quota tracking.
//
// This package tracks how many operations a key (e.g., an IP address) has
// performed on a given calendar day, with an atomic check-and-increment so
// concurrent callers can never jointly exceed the limit. It is designed to be
// reusable across different contexts (HTTP, CLI, background jobs).
package quota

import (
	"context"
	"time"
)

// Store defines the interface for storing and retrieving daily usage counts.
//
// Implementations can use in-memory storage, Redis, databases, or other
// backends. All methods must be thread-safe.
type Store interface {
	// CheckAndIncrement atomically checks the current count for the key on
	// the current day and increments it if it is below the limit.
	//
	// The check and increment happen within a single critical section to
	// prevent TOCTOU races: two concurrent callers at count limit-1 must
	// observe exactly one grant and one denial.
	//
	// Returns:
	//   - allowed: true if the operation was within limit and counted
	//   - count: the count after the call (unchanged when denied)
	CheckAndIncrement(ctx context.Context, key string, limit int) (allowed bool, count int, err error)

	// Count returns the current count for the key on the current day
	// without mutating any state.
	Count(ctx context.Context, key string) (int, error)

	// Cleanup removes usage buckets for days before the given day.
	// Today's buckets are never touched, so date rollover naturally
	// resets quotas while past days get pruned.
	Cleanup(ctx context.Context, before Day) error

	// KeyCount returns the number of (key, day) buckets currently stored.
	// Useful for monitoring memory usage.
	KeyCount(ctx context.Context) (int, error)
}

// Clock provides time operations, injectable for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (*SystemClock) Now() time.Time { return time.Now() }

// Day is a calendar date in UTC, used as the quota window key.
// Quotas are scoped per day: the same key on different days uses
// independent buckets.
type Day string

// DayOf returns the Day containing the given instant, in UTC.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Format("2006-01-02"))
}

// Before reports whether d is an earlier calendar date than other.
// The ISO date format sorts lexicographically, so string comparison is exact.
func (d Day) Before(other Day) bool {
	return d < other
}
