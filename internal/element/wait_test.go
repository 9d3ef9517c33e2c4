// internal/element/wait_test.go
package element

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

func TestWaitPolicy_Until(t *testing.T) {
	notFound := driver.NotFound(locator.ByID("x"))
	fatal := errors.New("driver crashed")

	t.Run("succeeds after retryable failures", func(t *testing.T) {
		w := WaitPolicy{Timeout: time.Second, Interval: 5 * time.Millisecond}
		calls := 0
		err := w.Until(context.Background(), "thing", func(context.Context) error {
			calls++
			if calls < 3 {
				return notFound
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error returns immediately", func(t *testing.T) {
		w := WaitPolicy{Timeout: time.Second, Interval: 5 * time.Millisecond}
		calls := 0
		err := w.Until(context.Background(), "thing", func(context.Context) error {
			calls++
			return fatal
		})
		assert.Same(t, fatal, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("timeout wraps the last failure", func(t *testing.T) {
		w := WaitPolicy{Timeout: 40 * time.Millisecond, Interval: 5 * time.Millisecond}
		err := w.Until(context.Background(), "thing", func(context.Context) error { return notFound })
		require.Error(t, err)
		assert.ErrorIs(t, err, driver.ErrTimeout)
		assert.ErrorIs(t, err, driver.ErrNoSuchElement)
		assert.Contains(t, err.Error(), "waiting for thing")
	})

	t.Run("zero timeout is a single attempt", func(t *testing.T) {
		calls := 0
		err := WaitPolicy{}.Until(context.Background(), "thing", func(context.Context) error {
			calls++
			return notFound
		})
		assert.Same(t, notFound, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("caller cancellation wins over timeout", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		w := WaitPolicy{Timeout: time.Second, Interval: 5 * time.Millisecond}
		err := w.Until(ctx, "thing", func(context.Context) error {
			cancel()
			return notFound
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, driver.ErrTimeout)
	})

	t.Run("default policy", func(t *testing.T) {
		p := DefaultWaitPolicy()
		assert.Equal(t, DefaultWaitTimeout, p.Timeout)
		assert.Equal(t, DefaultWaitInterval, p.Interval)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want outcome
	}{
		{"nil", nil, outcomeOK},
		{"stale", driver.ErrStaleElement, outcomeStale},
		{"not found", driver.NotFound(locator.ByID("x")), outcomeNotFound},
		{"index", &driver.IndexError{Requested: 2}, outcomeNotFound},
		{"no reference wins over its cause", errors.Join(ErrNoReference, driver.ErrNoSuchElement), outcomeNoReference},
		{"other", errors.New("boom"), outcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
