package quota

import (
	"context"
	"sync"
)

// InMemoryStore is a thread-safe in-memory implementation of Store.
//
// Usage counts are kept in a map keyed by (key, day). The store includes
// memory management features so it stays bounded over the process lifetime:
//   - Maximum bucket limit to prevent unbounded memory growth
//   - LRU (Least Recently Used) eviction when capacity is reached
//   - Cleanup of past-day buckets (typically scheduled daily by the caller)
//
// Guest quota state is intentionally process-lifetime only: it does not
// survive a restart.
type InMemoryStore struct {
	mu      sync.Mutex
	counts  map[bucketKey]int
	maxKeys int
	clock   Clock
	metrics MetricsRecorder

	// LRU tracking
	lruList *lruList
}

// bucketKey identifies one key's usage bucket for one calendar day.
type bucketKey struct {
	key string
	day Day
}

// lruList maintains a doubly-linked list of buckets ordered by last access time.
type lruList struct {
	head    *lruNode
	tail    *lruNode
	buckets map[bucketKey]*lruNode
}

// lruNode represents a node in the LRU list.
type lruNode struct {
	bucket bucketKey
	prev   *lruNode
	next   *lruNode
}

// InMemoryStoreConfig holds configuration for InMemoryStore.
type InMemoryStoreConfig struct {
	// MaxKeys is the maximum number of (key, day) buckets to store in
	// memory. When this limit is reached, the least recently used buckets
	// are evicted. Default: 10000.
	MaxKeys int

	// Clock provides time operations for testing.
	// Default: SystemClock.
	Clock Clock

	// Metrics records store operations. Default: NoOpMetrics.
	Metrics MetricsRecorder
}

// DefaultInMemoryStoreConfig returns the default configuration.
func DefaultInMemoryStoreConfig() InMemoryStoreConfig {
	return InMemoryStoreConfig{
		MaxKeys: 10000,
		Clock:   &SystemClock{},
		Metrics: NewNoOpMetrics(),
	}
}

// NewInMemoryStore creates a new in-memory quota store with the given configuration.
func NewInMemoryStore(config InMemoryStoreConfig) *InMemoryStore {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}
	if config.Clock == nil {
		config.Clock = &SystemClock{}
	}
	if config.Metrics == nil {
		config.Metrics = NewNoOpMetrics()
	}

	return &InMemoryStore{
		counts:  make(map[bucketKey]int),
		maxKeys: config.MaxKeys,
		clock:   config.Clock,
		metrics: config.Metrics,
		lruList: newLRUList(),
	}
}

// newLRUList creates a new LRU list.
func newLRUList() *lruList {
	return &lruList{
		buckets: make(map[bucketKey]*lruNode),
	}
}

// CheckAndIncrement atomically checks today's count for the key and
// increments it if below the limit.
//
// The check and increment run under a single lock acquisition to prevent
// TOCTOU (Time-of-Check to Time-of-Use) race conditions between concurrent
// requests from the same key.
func (s *InMemoryStore) CheckAndIncrement(ctx context.Context, key string, limit int) (bool, int, error) {
	bucket := bucketKey{key: key, day: DayOf(s.clock.Now())}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.counts[bucket]
	if current >= limit {
		// Denied - the count is not mutated, but the bucket is still marked
		// as recently used. An at-limit key that keeps knocking must not
		// drift to the eviction end of the LRU list; evicting it would
		// silently reset its quota for the day.
		s.lruList.touch(bucket)
		s.metrics.RecordDenied()
		return false, current, nil
	}

	// Check if we need to evict before adding a new bucket
	if !exists && len(s.counts) >= s.maxKeys {
		s.evictLRU()
	}

	s.counts[bucket] = current + 1
	s.lruList.touch(bucket)
	s.metrics.RecordAllowed()

	return true, current + 1, nil
}

// Count returns today's count for the key without mutation.
func (s *InMemoryStore) Count(ctx context.Context, key string) (int, error) {
	bucket := bucketKey{key: key, day: DayOf(s.clock.Now())}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[bucket], nil
}

// Cleanup removes all buckets for days before the given day.
//
// This is how the store avoids the unbounded growth of a plain usage map:
// past days' buckets are dead weight once the date rolls over, and a daily
// Cleanup(DayOf(now)) drops them all.
func (s *InMemoryStore) Cleanup(ctx context.Context, before Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for bucket := range s.counts {
		if bucket.day.Before(before) {
			delete(s.counts, bucket)
			s.lruList.remove(bucket)
			removed++
		}
	}

	if removed > 0 {
		s.metrics.RecordEviction(removed)
	}
	return nil
}

// KeyCount returns the number of (key, day) buckets currently stored.
func (s *InMemoryStore) KeyCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.counts), nil
}

// evictLRU evicts the least recently used buckets when the capacity limit
// is reached. It evicts 10% of capacity at once to avoid frequent evictions.
//
// Must be called while holding the lock.
func (s *InMemoryStore) evictLRU() {
	evictCount := s.maxKeys / 10
	if evictCount < 1 {
		evictCount = 1
	}

	evicted := 0
	for evicted < evictCount && s.lruList.tail != nil {
		bucket := s.lruList.tail.bucket
		delete(s.counts, bucket)
		s.lruList.remove(bucket)
		evicted++
	}

	if evicted > 0 {
		s.metrics.RecordEviction(evicted)
	}
}

// touch moves a bucket to the most recently used position,
// adding it if absent.
//
// Must be called while holding the lock.
func (l *lruList) touch(bucket bucketKey) {
	if _, exists := l.buckets[bucket]; exists {
		l.remove(bucket)
	}

	newNode := &lruNode{
		bucket: bucket,
		next:   l.head,
	}

	if l.head != nil {
		l.head.prev = newNode
	}
	l.head = newNode

	if l.tail == nil {
		l.tail = newNode
	}

	l.buckets[bucket] = newNode
}

// remove removes a bucket from the LRU list.
//
// Must be called while holding the lock.
func (l *lruList) remove(bucket bucketKey) {
	node, exists := l.buckets[bucket]
	if !exists {
		return
	}

	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	delete(l.buckets, bucket)
}
