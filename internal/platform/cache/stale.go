package cache

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/platform/resilience"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Status tells the caller how a StaleCache result was produced.
type Status string

const (
	StatusHit       Status = "hit"
	StatusStale     Status = "stale"
	StatusMiss      Status = "miss"
	StatusRefreshed Status = "refreshed"
)

type Loader func(ctx context.Context) (any, error)

type StaleOptions struct {
	TTL        time.Duration
	AllowStale bool
}

type StaleResult struct {
	Value  any
	Status Status
}

type StaleConfig struct {
	// DefaultTTL applies when a call passes no TTL.
	DefaultTTL time.Duration
	// MaxEntries bounds the cache with LRU eviction. Zero means unbounded.
	MaxEntries int
	Logger     *logging.Logger
}

type staleEntry struct {
	key      string
	value    any
	cachedAt time.Time
	ttl      time.Duration
	elem     *list.Element
}

// StaleCache serves expired values while a single background refresh per
// key replaces them.
type StaleCache struct {
	mu      sync.Mutex
	entries map[string]*staleEntry
	order   *list.List
	// refreshing holds keys with a background refresh running. It outlives
	// Clear and eviction so a re-created entry cannot start a second one.
	refreshing map[string]struct{}
	maxEntries int
	defaultTTL time.Duration
	flight     resilience.Flight[any]
	refreshes  conc.WaitGroup
	logger     *logging.Logger
	now        func() time.Time
}

func NewStaleCache(cfg StaleConfig) *StaleCache {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	defaultTTL := cfg.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	maxEntries := cfg.MaxEntries
	if maxEntries < 0 {
		maxEntries = 0
	}

	return &StaleCache{
		entries:    make(map[string]*staleEntry),
		order:      list.New(),
		refreshing: make(map[string]struct{}),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock swaps the time source. Intended for tests.
func (c *StaleCache) WithClock(now func() time.Time) *StaleCache {
	if now != nil {
		c.now = now
	}
	return c
}

func (c *StaleCache) GetOrLoad(ctx context.Context, key string, loader Loader, opts StaleOptions) (StaleResult, error) {
	if loader == nil {
		return StaleResult{}, fmt.Errorf("loader is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if key == "" {
		value, err := loader(ctx)
		if err != nil {
			return StaleResult{}, err
		}
		return StaleResult{Value: value, Status: StatusMiss}, nil
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	var (
		value any
		fresh bool
	)
	if ok {
		c.touch(e)
		value = e.value
		fresh = c.now().Sub(e.cachedAt) < ttl
	}
	c.mu.Unlock()

	switch {
	case !ok:
		return c.loadSync(ctx, key, loader, ttl, StatusMiss)
	case fresh:
		return StaleResult{Value: value, Status: StatusHit}, nil
	case !opts.AllowStale:
		return c.loadSync(ctx, key, loader, ttl, StatusRefreshed)
	}

	c.startRefresh(ctx, key, loader, ttl)
	return StaleResult{Value: value, Status: StatusStale}, nil
}

func (c *StaleCache) loadSync(ctx context.Context, key string, loader Loader, ttl time.Duration, status Status) (StaleResult, error) {
	value, _, err := c.flight.Do(ctx, key, func() (any, error) {
		if cached, ok := c.lookupFresh(key, ttl); ok {
			return cached, nil
		}
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		c.store(key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return StaleResult{}, err
	}
	return StaleResult{Value: value, Status: status}, nil
}

func (c *StaleCache) startRefresh(ctx context.Context, key string, loader Loader, ttl time.Duration) {
	c.mu.Lock()
	if _, running := c.refreshing[key]; running {
		c.mu.Unlock()
		return
	}
	c.refreshing[key] = struct{}{}
	c.mu.Unlock()

	refreshCtx := context.WithoutCancel(ctx)
	c.refreshes.Go(func() {
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, key)
			c.mu.Unlock()
		}()

		var catcher panics.Catcher
		catcher.Try(func() {
			started := c.now()
			value, err := loader(refreshCtx)
			if err != nil {
				c.logger.WarnContext(refreshCtx, "stale cache refresh failed",
					"key", key,
					"duration_ms", c.now().Sub(started).Milliseconds(),
					"error", err,
				)
				return
			}
			c.store(key, value, ttl)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			c.logger.ErrorContext(refreshCtx, "stale cache refresh panicked", "key", key, "error", recovered.AsError())
		}
	})
}

func (c *StaleCache) lookupFresh(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.cachedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

func (c *StaleCache) store(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.cachedAt = now
		e.ttl = ttl
		c.touch(e)
		return
	}

	e := &staleEntry{key: key, value: value, cachedAt: now, ttl: ttl}
	c.entries[key] = e
	if c.maxEntries > 0 {
		e.elem = c.order.PushFront(e)
		for c.order.Len() > c.maxEntries {
			c.evictOldest()
		}
	}
}

// touch and evictOldest require c.mu.
func (c *StaleCache) touch(e *staleEntry) {
	if c.maxEntries > 0 && e.elem != nil {
		c.order.MoveToFront(e.elem)
	}
}

func (c *StaleCache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	oldest := back.Value.(*staleEntry)
	c.order.Remove(back)
	oldest.elem = nil
	if current, ok := c.entries[oldest.key]; ok && current == oldest {
		delete(c.entries, oldest.key)
	}
}

// Clear drops key. A refresh already in flight for it may re-insert the
// value when it completes.
func (c *StaleCache) Clear(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if e.elem != nil {
		c.order.Remove(e.elem)
		e.elem = nil
	}
	delete(c.entries, key)
	return true
}

func (c *StaleCache) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]*staleEntry)
	c.order.Init()
	return removed
}

func (c *StaleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until every background refresh started so far has finished.
func (c *StaleCache) Wait() {
	c.refreshes.Wait()
}

type EntrySnapshot struct {
	Key             string
	CachedAt        time.Time
	TTL             time.Duration
	Age             time.Duration
	Stale           bool
	RefreshInFlight bool
}

func (c *StaleCache) Snapshot() []EntrySnapshot {
	c.mu.Lock()
	now := c.now()
	out := make([]EntrySnapshot, 0, len(c.entries))
	for key, e := range c.entries {
		age := now.Sub(e.cachedAt)
		_, inFlight := c.refreshing[key]
		out = append(out, EntrySnapshot{
			Key:             key,
			CachedAt:        e.cachedAt,
			TTL:             e.ttl,
			Age:             age,
			Stale:           age >= e.ttl,
			RefreshInFlight: inFlight,
		})
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
