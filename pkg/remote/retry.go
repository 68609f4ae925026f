package remote

import (
	"context"
	"time"
)

// RetryPolicy retries classified-transient failures with exponential backoff.
// Delays wait on a timer select so a blocked retry never stalls the runtime.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Do runs fn, retrying while IsRetryable reports the failure as transient.
// The delay doubles per attempt (BaseDelay * 2^(attempt-1)) capped at MaxDelay.
func (r RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= r.MaxRetries || !IsRetryable(err) {
			return err
		}

		delay := r.BaseDelay << attempt
		if r.MaxDelay > 0 && delay > r.MaxDelay {
			delay = r.MaxDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
