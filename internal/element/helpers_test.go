// internal/element/helpers_test.go
package element

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/driver/fakedriver"
)

// rootContext is a minimal document-level Context for exercising handles
// without the page package.
type rootContext struct {
	drv        driver.Driver
	wait       WaitPolicy
	logger     *zap.Logger
	acquiredAt time.Time
	refreshes  int
}

func newRoot(t *testing.T, drv driver.Driver) *rootContext {
	t.Helper()
	return &rootContext{
		drv:        drv,
		wait:       WaitPolicy{Timeout: 300 * time.Millisecond, Interval: 10 * time.Millisecond},
		logger:     zaptest.NewLogger(t),
		acquiredAt: time.Now(),
	}
}

func (r *rootContext) Driver() driver.Driver { return r.drv }

func (r *rootContext) SearchContext(context.Context) (driver.SearchContext, error) {
	return r.drv, nil
}

func (r *rootContext) Refresh(context.Context, time.Time) error {
	r.refreshes++
	return nil
}

func (r *rootContext) AcquiredAt() time.Time { return r.acquiredAt }
func (r *rootContext) Wait() WaitPolicy     { return r.wait }
func (r *rootContext) Logger() *zap.Logger  { return r.logger }

const listFixture = `<html><body>
<div id="main" class="panel">
  <h1 id="title">Inventory</h1>
  <ul id="items">
    <li class="row" data-key="a">Apple</li>
    <li class="row" data-key="b">Banana</li>
    <li class="row" data-key="c">Cherry</li>
  </ul>
  <form id="search">
    <input id="q" name="q" value="">
    <input id="agree" type="checkbox" checked>
    <button id="go" disabled>Go</button>
  </form>
  <p id="hidden-note" style="display: none">secret</p>
  <span id="box" data-x="10" data-y="20" data-width="30" data-height="40">box</span>
</div>
</body></html>`

func newFixture(t *testing.T) (*fakedriver.Document, *rootContext) {
	t.Helper()
	doc := fakedriver.MustParse(listFixture)
	return doc, newRoot(t, doc)
}
