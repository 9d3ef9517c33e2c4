// internal/page/page.go
package page

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// Container is a node of the page-object tree. Children hold a non-owning
// reference to their parent; parents never track children.
type Container interface {
	element.Context
	// Parent is nil for a Page.
	Parent() Container
}

var (
	_ Container = (*Page)(nil)
	_ Container = (*Component)(nil)
)

// Page is the root container, backed directly by a driver session. The
// document itself never goes stale, so Refresh is a no-op.
type Page struct {
	id       string
	drv      driver.Driver
	wait     element.WaitPolicy
	logger   *zap.Logger
	loadedAt time.Time
}

// Option configures a Page.
type Option func(*Page)

// WithWait overrides the default wait policy for every handle under the page.
func WithWait(w element.WaitPolicy) Option {
	return func(p *Page) { p.wait = w }
}

// WithLogger sets the logger handles under the page report to.
func WithLogger(l *zap.Logger) Option {
	return func(p *Page) { p.logger = l }
}

// New creates a Page over drv.
func New(drv driver.Driver, opts ...Option) *Page {
	p := &Page{
		id:       uuid.NewString(),
		drv:      drv,
		wait:     element.DefaultWaitPolicy(),
		logger:   zap.NewNop(),
		loadedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("page_id", p.id))
	return p
}

func (p *Page) ID() string               { return p.id }
func (p *Page) Driver() driver.Driver    { return p.drv }
func (p *Page) Parent() Container        { return nil }
func (p *Page) AcquiredAt() time.Time    { return p.loadedAt }
func (p *Page) Wait() element.WaitPolicy { return p.wait }
func (p *Page) Logger() *zap.Logger      { return p.logger }

// SearchContext returns the driver, which searches the whole document.
func (p *Page) SearchContext(context.Context) (driver.SearchContext, error) {
	return p.drv, nil
}

func (p *Page) Refresh(context.Context, time.Time) error { return nil }

// Reload records that the document was replaced (navigation, reload). Handles
// acquired before it are expected to go stale and will re-acquire on demand.
func (p *Page) Reload() {
	p.loadedAt = time.Now()
	p.logger.Debug("Page reloaded.")
}

func (p *Page) Find(ctx context.Context, by locator.By) (*element.Handle, error) {
	return element.New(ctx, p, by)
}

func (p *Page) FindIndexed(ctx context.Context, by locator.By, index int) (*element.Handle, error) {
	return element.NewIndexed(ctx, p, by, index)
}

func (p *Page) FindOptional(ctx context.Context, by locator.By) (*element.Handle, error) {
	return element.Optional(ctx, p, by)
}

func (p *Page) FindAll(ctx context.Context, by locator.By) ([]*element.Handle, error) {
	return element.GetAll(ctx, p, by)
}

// Component is a container rooted at one element, such as a table row or a
// form. Lookups through it are scoped to that element.
type Component struct {
	handle *element.Handle
	parent Container
}

// NewComponent roots a component at h. parent is the container the component
// was found under.
func NewComponent(h *element.Handle, parent Container) *Component {
	return &Component{handle: h, parent: parent}
}

func (c *Component) Handle() *element.Handle  { return c.handle }
func (c *Component) Parent() Container        { return c.parent }
func (c *Component) Driver() driver.Driver    { return c.handle.Driver() }
func (c *Component) AcquiredAt() time.Time    { return c.handle.AcquiredAt() }
func (c *Component) Wait() element.WaitPolicy { return c.handle.Wait() }
func (c *Component) Logger() *zap.Logger      { return c.handle.Logger() }

func (c *Component) SearchContext(ctx context.Context) (driver.SearchContext, error) {
	return c.handle.SearchContext(ctx)
}

// Refresh re-acquires the root element, refreshing its own ancestors first
// if they have gone stale.
func (c *Component) Refresh(ctx context.Context, expiration time.Time) error {
	return c.handle.Refresh(ctx, expiration)
}

func (c *Component) Find(ctx context.Context, by locator.By) (*element.Handle, error) {
	return element.New(ctx, c, by)
}

func (c *Component) FindIndexed(ctx context.Context, by locator.By, index int) (*element.Handle, error) {
	return element.NewIndexed(ctx, c, by, index)
}

func (c *Component) FindOptional(ctx context.Context, by locator.By) (*element.Handle, error) {
	return element.Optional(ctx, c, by)
}

func (c *Component) FindAll(ctx context.Context, by locator.By) ([]*element.Handle, error) {
	return element.GetAll(ctx, c, by)
}
