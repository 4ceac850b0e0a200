// Package mem holds the short-lived caches used on request hot paths.
package mem

import (
	"sync"
	"time"
)

// Cache is a keyed store whose entries expire after a TTL.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Put(key string, value V, ttl time.Duration)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLStore is a process-local Cache. Concurrent Puts for the same key race
// harmlessly: the last write wins.
type TTLStore[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
	now  func() time.Time
}

type Option[V any] func(*TTLStore[V])

// WithClock replaces time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *TTLStore[V]) { s.now = now }
}

func NewTTLStore[V any](opts ...Option[V]) *TTLStore[V] {
	s := &TTLStore[V]{
		data: make(map[string]entry[V]),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TTLStore[V]) Put(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry[V]{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

// Get returns the value for key if not expired. Expired entries are dropped.
func (s *TTLStore[V]) Get(key string) (V, bool) {
	var zero V

	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// re-check: a concurrent Put may have refreshed the key
		if cur, ok := s.data[key]; ok && !s.now().Before(cur.expiresAt) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Noop never stores anything. Every Get is a miss.
type Noop[V any] struct{}

func (Noop[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (Noop[V]) Put(string, V, time.Duration) {}
