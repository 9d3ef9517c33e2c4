// internal/element/wait.go
package element

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/xkilldash9x/robustdom/internal/driver"
)

const (
	DefaultWaitTimeout  = 10 * time.Second
	DefaultWaitInterval = 250 * time.Millisecond
)

// WaitPolicy bounds how long a context keeps re-trying an acquisition.
type WaitPolicy struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultWaitPolicy returns the standard policy used when none is configured.
func DefaultWaitPolicy() WaitPolicy {
	return WaitPolicy{Timeout: DefaultWaitTimeout, Interval: DefaultWaitInterval}
}

// Until calls fn until it succeeds, fails with a non-retryable error, or the
// policy times out. Only not-found and stale failures are retried. A timeout
// is reported as an error matching both driver.ErrTimeout and the last
// failure fn returned. A non-positive Timeout means a single attempt.
func (w WaitPolicy) Until(ctx context.Context, what string, fn func(ctx context.Context) error) error {
	if w.Timeout <= 0 {
		return fn(ctx)
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWaitInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	var last error
	for {
		// The first token is available immediately; later ones pace the polls.
		if err := limiter.Wait(waitCtx); err != nil {
			break
		}
		last = fn(waitCtx)
		if last == nil {
			return nil
		}
		if !retryable(last) {
			return last
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if last == nil {
		last = waitCtx.Err()
	}
	return fmt.Errorf("%w after %s waiting for %s: %w", driver.ErrTimeout, w.Timeout, what, last)
}

func retryable(err error) bool {
	switch classify(err) {
	case outcomeStale, outcomeNotFound:
		return true
	default:
		return false
	}
}
