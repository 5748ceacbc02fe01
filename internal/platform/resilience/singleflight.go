package resilience

import (
	"context"
	"fmt"
	"sync"
)

// Flight collapses concurrent loads of the same key into one call of fn.
// Callers that join an in-flight load share its result.
type Flight[T any] struct {
	mu    sync.Mutex
	loads map[string]*flightLoad[T]
}

type flightLoad[T any] struct {
	done    chan struct{}
	val     T
	err     error
	waiters int
}

// Do runs fn for key unless a load for key is already running, in which case
// it waits for that load. A waiter whose ctx ends returns ctx.Err() without
// cancelling the shared load. shared reports whether the result came from
// another caller's load.
func (f *Flight[T]) Do(ctx context.Context, key string, fn func() (T, error)) (val T, shared bool, err error) {
	f.mu.Lock()
	if f.loads == nil {
		f.loads = make(map[string]*flightLoad[T])
	}
	if l, ok := f.loads[key]; ok {
		l.waiters++
		f.mu.Unlock()
		select {
		case <-l.done:
			return l.val, true, l.err
		case <-ctx.Done():
			var zero T
			return zero, true, ctx.Err()
		}
	}

	l := &flightLoad[T]{done: make(chan struct{})}
	f.loads[key] = l
	f.mu.Unlock()

	func() {
		defer func() {
			if r := recover(); r != nil {
				l.err = fmt.Errorf("flight %q panicked: %v", key, r)
			}
		}()
		l.val, l.err = fn()
	}()

	f.mu.Lock()
	delete(f.loads, key)
	f.mu.Unlock()
	close(l.done)

	return l.val, false, l.err
}

// InFlight reports whether a load for key is running.
func (f *Flight[T]) InFlight(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.loads[key]
	return ok
}
