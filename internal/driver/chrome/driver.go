// internal/driver/chrome/driver.go
package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

const (
	defaultOperationTimeout = 15 * time.Second
	defaultPollInterval     = 100 * time.Millisecond
	cleanupTimeout          = 2 * time.Second
)

var _ driver.Driver = (*Driver)(nil)

// Driver implements driver.Driver over one chromedp tab. The tab context must
// already be running (chromedp.Run has been called on it at least once).
type Driver struct {
	tab     context.Context
	logger  *zap.Logger
	caps    driver.Capabilities
	timeout time.Duration
	poll    time.Duration

	mu       sync.Mutex
	implicit time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

func WithLogger(l *zap.Logger) Option { return func(d *Driver) { d.logger = l } }

// WithOperationTimeout bounds every individual protocol round trip. Zero
// leaves only the caller's context in charge.
func WithOperationTimeout(t time.Duration) Option { return func(d *Driver) { d.timeout = t } }

func WithCapabilities(c driver.Capabilities) Option { return func(d *Driver) { d.caps = c } }

// WithPollInterval sets how often a find is retried while the implicit wait
// has not elapsed.
func WithPollInterval(p time.Duration) Option { return func(d *Driver) { d.poll = p } }

// New wraps the chromedp tab context tab.
func New(tab context.Context, opts ...Option) *Driver {
	d := &Driver{
		tab:     tab,
		logger:  zap.NewNop(),
		caps:    driver.Capabilities{XPath: true, CSS: true},
		timeout: defaultOperationTimeout,
		poll:    defaultPollInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("chrome")
	return d
}

func (d *Driver) Capabilities() driver.Capabilities { return d.caps }

func (d *Driver) ImplicitWait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.implicit
}

func (d *Driver) SetImplicitWait(w time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.implicit = w
}

// Navigate loads url in the tab and waits for its body to be ready.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, "navigate "+url, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// EmulateViewport resizes the tab's viewport.
func (d *Driver) EmulateViewport(ctx context.Context, width, height int64) error {
	return d.run(ctx, "emulate viewport", chromedp.EmulateViewport(width, height))
}

func (d *Driver) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	return d.findFirst(ctx, nil, by)
}

func (d *Driver) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	return d.find(ctx, nil, by)
}

// LocateByScript runs script with the scope element, or the document, as its
// search root. The script's result is tagged with a unique attribute and then
// resolved to a node id through the DOM domain.
func (d *Driver) LocateByScript(ctx context.Context, scope driver.Element, script driver.Script, args ...interface{}) (driver.Element, error) {
	from, err := d.nodeOf(scope)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = []interface{}{}
	}

	token := uuid.NewString()
	var nodes []*cdp.Node
	err = d.run(ctx, script.Name, chromedp.ActionFunc(func(c context.Context) error {
		var hit bool
		if err := d.call(c, from, locateWrapper(script), &hit, hitAttr, token, args); err != nil {
			return err
		}
		if !hit {
			return nil
		}
		defer d.unmark(c, token)
		return chromedp.Nodes(hitSelector(token), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)).Do(c)
	}))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s found nothing for %v", driver.ErrNoSuchElement, script.Name, args)
	}
	return d.element(nodes[0]), nil
}

func (d *Driver) nodeOf(scope driver.Element) (*cdp.Node, error) {
	if scope == nil {
		return nil, nil
	}
	el, ok := scope.(*Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("chrome: scope %T was not issued by this driver", scope)
	}
	return el.node, nil
}

func (d *Driver) element(n *cdp.Node) *Element {
	return &Element{d: d, node: n}
}

func (d *Driver) findFirst(ctx context.Context, scope *cdp.Node, by locator.By) (driver.Element, error) {
	all, err := d.find(ctx, scope, by)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, driver.NotFound(by)
	}
	return all[0], nil
}

// find queries under scope (the document when nil), repeating the query
// until something matches or the implicit wait runs out.
func (d *Driver) find(ctx context.Context, scope *cdp.Node, by locator.By) ([]driver.Element, error) {
	deadline := time.Now().Add(d.ImplicitWait())
	limiter := rate.NewLimiter(rate.Every(d.poll), 1)
	for {
		nodes, err := d.query(ctx, scope, by)
		if err != nil {
			return nil, err
		}
		if len(nodes) > 0 || !time.Now().Before(deadline) {
			out := make([]driver.Element, len(nodes))
			for i, n := range nodes {
				out[i] = d.element(n)
			}
			return out, nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
}

// query runs one lookup. Locators with a CSS form go straight to the DOM
// domain; the rest are evaluated as XPath in the page and tagged.
func (d *Driver) query(ctx context.Context, scope *cdp.Node, by locator.By) ([]*cdp.Node, error) {
	if css, ok := locator.CSSFor(by); ok {
		opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
		if scope != nil {
			opts = append(opts, chromedp.FromNode(scope))
		}
		var nodes []*cdp.Node
		err := d.run(ctx, "query "+by.String(), chromedp.Nodes(css, &nodes, opts...))
		return nodes, err
	}

	xpath, ok := locator.XPathFor(by)
	if !ok {
		return nil, fmt.Errorf("chrome: no query form for %s", by)
	}
	token := uuid.NewString()
	var nodes []*cdp.Node
	err := d.run(ctx, "query "+by.String(), chromedp.ActionFunc(func(c context.Context) error {
		var count int
		if err := d.call(c, scope, markXPathJS, &count, xpath, hitAttr, token); err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		defer d.unmark(c, token)
		return chromedp.Nodes(hitSelector(token), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)).Do(c)
	}))
	return nodes, err
}

// unmark strips token from the page. It outlives cancellation of ctx so a
// canceled lookup does not leave markers behind.
func (d *Driver) unmark(ctx context.Context, token string) {
	c, cancel := context.WithTimeout(Detach(ctx), cleanupTimeout)
	defer cancel()
	if err := d.call(c, nil, unmarkJS, nil, hitAttr, token); err != nil {
		d.logger.Debug("Failed to remove lookup marker.", zap.String("token", token), zap.Error(err))
	}
}

// call runs fn with `this` bound to node, or to the document when node is
// nil, and decodes its by-value result into res when res is non-nil.
func (d *Driver) call(ctx context.Context, node *cdp.Node, fn string, res interface{}, args ...interface{}) error {
	var raw []byte
	if node == nil {
		expr, err := applyExpression(fn, args...)
		if err != nil {
			return err
		}
		if err := chromedp.Evaluate(expr, &raw).Do(ctx); err != nil {
			return err
		}
	} else {
		obj, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		err = chromedp.CallFunctionOn(fn, &raw, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}, args...).Do(ctx)
		if err != nil {
			return err
		}
	}
	if res == nil {
		return nil
	}
	_, err := decode(raw, res)
	return err
}

// run executes actions on the tab under the caller's context and the
// per-operation timeout, then classifies the failure.
func (d *Driver) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(d.tab, ctx)
	defer cancel()
	if d.timeout > 0 {
		var cancelOp context.CancelFunc
		runCtx, cancelOp = context.WithTimeout(runCtx, d.timeout)
		defer cancelOp()
	}

	err := chromedp.Run(runCtx, actions...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		d.logger.Debug("Browser operation timed out.", zap.String("op", op), zap.Duration("timeout", d.timeout))
		return fmt.Errorf("chrome: %s timed out after %v: %w", op, d.timeout, runCtx.Err())
	}
	return classify(err)
}
