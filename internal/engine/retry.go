package engine

import (
	"context"
	"time"
)

// retryPolicy describes the upload retry schedule: a fixed delay plus an
// exponential component that doubles from base up to cap. The policy is pure
// so tests can assert the schedule without sleeping.
type retryPolicy struct {
	maxAttempts int
	fixed       time.Duration
	base        time.Duration
	cap         time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts: 5,
		fixed:       3 * time.Second,
		base:        1 * time.Second,
		cap:         32 * time.Second,
	}
}

// delay returns the wait after the given 1-based failed attempt.
func (p retryPolicy) delay(attempt int) time.Duration {
	exp := p.base
	for i := 1; i < attempt; i++ {
		exp *= 2
		if exp >= p.cap {
			exp = p.cap
			break
		}
	}
	if exp > p.cap {
		exp = p.cap
	}
	return p.fixed + exp
}

// sleeper pauses between retry attempts. The default honors context
// cancellation; tests substitute a recording fake.
type sleeper func(ctx context.Context, d time.Duration) error

func timerSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
