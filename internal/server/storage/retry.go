package storage

import (
	"context"
	"time"
)

// RetryPolicy retries transient (clock-skew) failures with linear backoff:
// the n-th retry waits n*BaseDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy allows three attempts one second apart, then two.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}

// Retry runs fn until it succeeds, fails with a non-transient error, or the
// attempts are exhausted. onRetry, if not nil, is called before each wait.
// Cancelling ctx aborts the wait and returns the last error.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if Classify(err) != ClassTransient || attempt == attempts {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(p.BaseDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
