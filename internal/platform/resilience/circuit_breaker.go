package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// BreakerConfig configures a Breaker. Zero values fall back to 5 failures, a
// 15s cooldown and a single half-open probe.
type BreakerConfig struct {
	Name             string
	Enabled          bool
	FailureThreshold int
	Cooldown         time.Duration
	Probes           int
	// OnStateChange is called outside the breaker lock after each transition.
	OnStateChange func(name string, from, to CircuitState)
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 15 * time.Second
	}
	if c.Probes < 1 {
		c.Probes = 1
	}
	return c
}

// Breaker guards one upstream. It opens after FailureThreshold consecutive
// failures, rejects calls for Cooldown, then lets Probes calls through; all
// probes must succeed to close again. A disabled breaker allows everything.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CircuitState
	failures  int
	openedAt  time.Time
	probing   int
	succeeded int
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: CircuitStateClosed,
	}
}

func (b *Breaker) Allow() error {
	if !b.cfg.Enabled {
		return nil
	}

	b.mu.Lock()
	from := b.state
	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.probing, b.succeeded = 0, 0
	}
	if b.state == CircuitStateHalfOpen && b.probing >= b.cfg.Probes {
		b.mu.Unlock()
		b.notify(from, CircuitStateHalfOpen)
		return ErrCircuitOpen
	}
	if b.state == CircuitStateHalfOpen {
		b.probing++
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return nil
}

func (b *Breaker) RecordSuccess() {
	if !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.probing = max(b.probing-1, 0)
		b.succeeded++
		if b.succeeded >= b.cfg.Probes && b.probing == 0 {
			b.state = CircuitStateClosed
			b.failures, b.succeeded = 0, 0
			b.openedAt = time.Time{}
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *Breaker) RecordFailure() {
	if !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case CircuitStateHalfOpen:
		b.trip()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// State reports half_open once the cooldown has elapsed even if no call has
// probed yet.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return CircuitStateHalfOpen
	}
	return b.state
}

// Rejecting reports whether Allow would currently refuse a call.
func (b *Breaker) Rejecting() bool {
	if !b.cfg.Enabled {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateOpen:
		return b.now().Sub(b.openedAt) < b.cfg.Cooldown
	case CircuitStateHalfOpen:
		return b.probing >= b.cfg.Probes
	}
	return false
}

// Do runs fn behind the breaker. Errors for which countsAsFailure returns
// false pass through but are recorded as successes.
func (b *Breaker) Do(fn func() error, countsAsFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (countsAsFailure == nil || countsAsFailure(err)) {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return err
}

func (b *Breaker) trip() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.probing, b.succeeded = 0, 0
}

func (b *Breaker) notify(from, to CircuitState) {
	if from == to || b.cfg.OnStateChange == nil {
		return
	}
	b.cfg.OnStateChange(b.cfg.Name, from, to)
}
