package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy runs up to Attempts calls with a fixed Delay between them.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// Wait overrides the delay step, mainly for tests.
	Wait func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 400 * time.Millisecond}
}

// Retry calls fn until it succeeds, the attempts are exhausted or ctx is
// done. It returns the number of attempts made and the last error.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) error) (int, error) {
	if fn == nil {
		return 0, errors.New("retry func is required")
	}
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := policy.Wait
	if wait == nil {
		wait = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == attempts {
			break
		}
		if err := wait(ctx, policy.Delay); err != nil {
			return attempt, errors.Join(lastErr, err)
		}
	}

	return attempts, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
