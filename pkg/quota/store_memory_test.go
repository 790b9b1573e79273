package quota

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a controllable Clock for testing date rollover.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestStore(clock Clock, maxKeys int) *InMemoryStore {
	return NewInMemoryStore(InMemoryStoreConfig{
		MaxKeys: maxKeys,
		Clock:   clock,
	})
}

func TestCheckAndIncrement_WithinLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 100)

	for i := 1; i <= 5; i++ {
		allowed, count, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, count)
	}
}

func TestCheckAndIncrement_DeniedAtLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 100)

	for i := 0; i < 5; i++ {
		_, _, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
		require.NoError(t, err)
	}

	// 6th attempt on the same day is denied without mutation
	allowed, count, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 5, count)

	// Denials do not alter stored state
	stored, err := store.Count(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored)
}

func TestCheckAndIncrement_IndependentKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 100)

	for i := 0; i < 5; i++ {
		_, _, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
		require.NoError(t, err)
	}

	allowed, count, err := store.CheckAndIncrement(ctx, "10.0.0.2", 5)
	require.NoError(t, err)
	assert.True(t, allowed, "other keys are unaffected")
	assert.Equal(t, 1, count)
}

func TestCheckAndIncrement_DateRolloverResetsQuota(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(clock, 100)

	for i := 0; i < 5; i++ {
		_, _, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
		require.NoError(t, err)
	}
	allowed, _, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
	require.NoError(t, err)
	require.False(t, allowed)

	// Next day the quota naturally resets
	clock.Advance(24 * time.Hour)

	allowed, count, err := store.CheckAndIncrement(ctx, "10.0.0.1", 5)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, count)
}

func TestCheckAndIncrement_ConcurrentNoOvershoot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 100)
	const limit = 5

	// Pre-load to limit-1, then race two requests for the last slot
	for i := 0; i < limit-1; i++ {
		_, _, err := store.CheckAndIncrement(ctx, "10.0.0.1", limit)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := store.CheckAndIncrement(ctx, "10.0.0.1", limit)
			assert.NoError(t, err)
			results <- allowed
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for allowed := range results {
		if allowed {
			granted++
		}
	}
	assert.Equal(t, 1, granted, "exactly one of two concurrent requests gets the last slot")

	count, err := store.Count(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, limit, count, "count never overshoots the limit")
}

func TestCheckAndIncrement_ConcurrentManyGoroutines(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 1000)
	const limit = 50

	var wg sync.WaitGroup
	var granted int64
	var grantedMu sync.Mutex

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := store.CheckAndIncrement(ctx, "shared-key", limit)
			require.NoError(t, err)
			if allowed {
				grantedMu.Lock()
				granted++
				grantedMu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), granted)
}

func TestCleanup_RemovesPastDaysOnly(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := newTestStore(clock, 100)

	_, _, err := store.CheckAndIncrement(ctx, "old-key", 5)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	_, _, err = store.CheckAndIncrement(ctx, "new-key", 5)
	require.NoError(t, err)

	require.NoError(t, store.Cleanup(ctx, DayOf(clock.Now())))

	keys, err := store.KeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, keys, "only today's bucket survives cleanup")

	count, err := store.Count(ctx, "new-key")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEvictLRU_BoundsBucketCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 10)

	for i := 0; i < 50; i++ {
		_, _, err := store.CheckAndIncrement(ctx, fmt.Sprintf("key-%d", i), 5)
		require.NoError(t, err)
	}

	keys, err := store.KeyCount(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, keys, 10, "bucket count stays bounded by MaxKeys")
}

func TestEvictLRU_DeniedKeyStaysRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeClock(), 10)
	const limit = 5

	// Exhaust one key's quota for the day
	for i := 0; i < limit; i++ {
		_, _, err := store.CheckAndIncrement(ctx, "exhausted", limit)
		require.NoError(t, err)
	}

	// The exhausted key keeps retrying while fresh keys pile in and force
	// evictions. A denial counts as recent use, so the exhausted bucket must
	// never be the eviction victim.
	for i := 0; i < 30; i++ {
		allowed, _, err := store.CheckAndIncrement(ctx, "exhausted", limit)
		require.NoError(t, err)
		assert.False(t, allowed)

		_, _, err = store.CheckAndIncrement(ctx, fmt.Sprintf("fresh-%d", i), limit)
		require.NoError(t, err)
	}

	// Still denied: eviction pressure must not have reset the day's count
	allowed, count, err := store.CheckAndIncrement(ctx, "exhausted", limit)
	require.NoError(t, err)
	assert.False(t, allowed, "eviction must not reset an exhausted key's quota")
	assert.Equal(t, limit, count)
}

func TestDayOf(t *testing.T) {
	d := DayOf(time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, Day("2025-06-01"), d)

	// JST midnight is still the previous UTC day
	jst := time.FixedZone("JST", 9*3600)
	d = DayOf(time.Date(2025, 6, 2, 8, 0, 0, 0, jst))
	assert.Equal(t, Day("2025-06-01"), d)

	assert.True(t, Day("2025-05-31").Before(Day("2025-06-01")))
	assert.False(t, Day("2025-06-01").Before(Day("2025-06-01")))
}
