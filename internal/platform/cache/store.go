package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/platform/resilience"
)

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiry
}

func (e ttlEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store is a typed TTL map. An entry is served strictly before
// cachedAt+ttl and dropped by the first read at or after it.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]ttlEntry[V]
	ttl     time.Duration
	flight  resilience.Flight[V]
	now     func() time.Time
}

// NewStore builds a store whose Set uses ttl. A ttl <= 0 keeps entries until
// they are deleted.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries: make(map[string]ttlEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock swaps the time source for tests.
func (s *Store[V]) WithClock(now func() time.Time) *Store[V] {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it.
		if current, exists := s.entries[key]; exists && current.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(ctx context.Context, key string, value V) {
	s.SetWithTTL(ctx, key, value, s.ttl)
}

// SetWithTTL replaces any entry for key with one expiring at now+ttl.
func (s *Store[V]) SetWithTTL(_ context.Context, key string, value V, ttl time.Duration) {
	if key == "" {
		return
	}
	e := ttlEntry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePrefix drops every key starting with prefix and reports how many
// went. An empty prefix deletes nothing.
func (s *Store[V]) DeletePrefix(_ context.Context, prefix string) int {
	if prefix == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value or runs loader once per key across
// concurrent callers, storing a successful result with ttl. Errors are not
// cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (V, error)) (V, error) {
	if loader == nil {
		var zero V
		return zero, errors.New("cache loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, _, err := s.flight.Do(ctx, key, func() (V, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return loaded, err
		}
		s.SetWithTTL(ctx, key, loaded, ttl)
		return loaded, nil
	})
	return value, err
}
