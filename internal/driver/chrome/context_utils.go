// internal/driver/chrome/context_utils.go
package chrome

import (
	"context"
	"time"
)

// CombineContext returns a context derived from session that is also canceled
// when op is. Values, including the chromedp target, come from session; op
// only contributes cancellation and its deadline.
func CombineContext(session, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(session)
	if deadline, ok := op.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		combined, cancelDeadline = context.WithDeadline(combined, deadline)
		inner := cancel
		cancel = func() {
			cancelDeadline()
			inner()
		}
	}

	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}

// valueOnlyContext keeps its parent's values but none of its cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context carrying ctx's values that is never canceled. It
// is used for cleanup that has to reach the browser after the operation that
// needed it was canceled.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
