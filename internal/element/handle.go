// internal/element/handle.go
package element

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// Context is a search context in the containment tree rooted at a driver
// session. Implementations must be comparable (pointer types) because they
// take part in handle identity.
type Context interface {
	// Driver returns the session that owns this context.
	Driver() driver.Driver
	// SearchContext returns the live native context, acquiring it if needed.
	SearchContext(ctx context.Context) (driver.SearchContext, error)
	// Refresh re-acquires the context if it was acquired at or before
	// expiration; otherwise it does nothing.
	Refresh(ctx context.Context, expiration time.Time) error
	// AcquiredAt is when the context last resolved successfully.
	AcquiredAt() time.Time
	// Wait is the policy bounding acquisition under this context.
	Wait() WaitPolicy
	Logger() *zap.Logger
}

// Handle is a lazy, self-healing reference to a DOM element. It remembers
// how it was found so that a stale native reference can be re-acquired and
// the failed operation retried.
//
// A Handle is owned by a single goroutine; its cached reference and
// timestamps are mutated in place during refresh.
type Handle struct {
	context Context
	by      locator.By
	index   int

	drv      driver.Driver
	family   locator.Family
	selector string

	cached     driver.Element
	acquiredAt time.Time
	deferred   error
}

var (
	_ Context        = (*Handle)(nil)
	_ driver.Element = (*Handle)(nil)
)

// Key is the comparable identity of a handle.
type Key struct {
	Context Context
	By      locator.By
	Index   int
}

// New resolves the first element matching by under c.
func New(ctx context.Context, c Context, by locator.By) (*Handle, error) {
	return build(ctx, nil, c, by, locator.Cardinal)
}

// NewIndexed resolves the index-th element matching by under c. index may
// also be locator.Cardinal or locator.Optional.
func NewIndexed(ctx context.Context, c Context, by locator.By, index int) (*Handle, error) {
	return build(ctx, nil, c, by, index)
}

// Optional resolves the first element matching by under c, tolerating its
// absence. Use HasReference to find out whether it was found.
func Optional(ctx context.Context, c Context, by locator.By) (*Handle, error) {
	return build(ctx, nil, c, by, locator.Optional)
}

// Wrap adopts an already-resolved native element as the first match of by.
func Wrap(ctx context.Context, native driver.Element, c Context, by locator.By) (*Handle, error) {
	return build(ctx, native, c, by, locator.Cardinal)
}

// WrapIndexed adopts an already-resolved native element. If native is itself
// a *Handle its state is copied and c, by and index are ignored.
func WrapIndexed(ctx context.Context, native driver.Element, c Context, by locator.By, index int) (*Handle, error) {
	return build(ctx, native, c, by, index)
}

func build(ctx context.Context, native driver.Element, c Context, by locator.By, index int) (*Handle, error) {
	h := &Handle{}

	if robust, ok := native.(*Handle); ok && robust != nil {
		h.context = robust.context
		h.by = robust.by
		h.index = robust.index
		h.cached = robust.cached
		h.acquiredAt = robust.acquiredAt
	} else {
		if c == nil {
			return nil, fmt.Errorf("element: context must be non-nil")
		}
		if by.IsZero() {
			return nil, fmt.Errorf("element: locator must be set")
		}
		if !locator.ValidIndex(index) {
			return nil, fmt.Errorf("element: index %d is invalid", index)
		}
		h.context = c
		h.by = by
		h.index = index
		h.cached = native
	}

	h.drv = h.context.Driver()
	h.selectFamily()

	if h.cached == nil {
		if err := h.refresh(ctx, nil); err != nil {
			return nil, err
		}
	} else if h.acquiredAt.IsZero() {
		h.acquiredAt = time.Now()
	}
	return h, nil
}

// selectFamily picks, once, how this handle resolves. Optional and positive
// ordinal handles prefer script-based XPath, then script-based CSS; everything
// else goes through the driver's native locate call.
func (h *Handle) selectFamily() {
	h.family = locator.Native
	if h.index != locator.Optional && h.index <= 0 {
		return
	}
	caps := h.drv.Capabilities()
	if caps.XPath && h.by.Kind != locator.CSS {
		if xp, ok := locator.XPathFor(h.by); ok {
			if h.index > 0 {
				xp = locator.Positional(xp, h.index)
			}
			h.family = locator.DerivedXPath
			h.selector = xp
			return
		}
	}
	if caps.CSS {
		if css, ok := locator.CSSFor(h.by); ok {
			h.family = locator.DerivedCSS
			h.selector = css
		}
	}
}

// -- Identity --

// Key returns the handle's identity.
func (h *Handle) Key() Key {
	return Key{Context: h.context, By: h.by, Index: h.index}
}

// Equal reports whether both handles share context, locator and index.
func (h *Handle) Equal(other *Handle) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.Key() == other.Key()
}

func (h *Handle) String() string {
	switch h.index {
	case locator.Cardinal:
		return fmt.Sprintf("element(%s)", h.by)
	case locator.Optional:
		return fmt.Sprintf("element(%s, optional)", h.by)
	default:
		return fmt.Sprintf("element(%s)[%d]", h.by, h.index)
	}
}

// -- Accessors --

func (h *Handle) Context() Context       { return h.context }
func (h *Handle) Locator() locator.By    { return h.by }
func (h *Handle) Index() int             { return h.index }
func (h *Handle) Family() locator.Family { return h.family }
func (h *Handle) Selector() string       { return h.selector }
func (h *Handle) AcquiredAt() time.Time  { return h.acquiredAt }
func (h *Handle) Driver() driver.Driver  { return h.drv }
func (h *Handle) Wait() WaitPolicy       { return h.context.Wait() }
func (h *Handle) Logger() *zap.Logger    { return h.context.Logger() }

// Deferred returns the not-found error an optional handle swallowed, if any.
func (h *Handle) Deferred() error { return h.deferred }

// HasReference reports whether a native reference is held. A referenceless
// optional handle tries to acquire one first.
func (h *Handle) HasReference(ctx context.Context) bool {
	if h.index == locator.Optional && h.cached == nil {
		if err := h.acquire(ctx); err != nil {
			h.Logger().Debug("Optional element acquisition failed.", zap.Stringer("locator", h.by), zap.Error(err))
		}
		return h.cached != nil
	}
	return true
}

// Native returns the cached native element, acquiring it first if none is
// held. A referenceless optional handle yields an error matching
// ErrNoReference.
func (h *Handle) Native(ctx context.Context) (driver.Element, error) {
	if h.cached == nil {
		if err := h.refresh(ctx, nil); err != nil {
			return nil, err
		}
		if h.cached == nil {
			return nil, h.noReference()
		}
	}
	return h.cached, nil
}

func (h *Handle) noReference() error {
	cause := h.deferred
	if cause == nil {
		cause = driver.NotFound(h.by)
	}
	return fmt.Errorf("%w %s: %w", ErrNoReference, h.by, cause)
}

// -- Context implementation --

// SearchContext returns the handle's native element as a search root.
func (h *Handle) SearchContext(ctx context.Context) (driver.SearchContext, error) {
	return h.Native(ctx)
}

// Refresh re-acquires the reference if it was acquired at or before expiration.
func (h *Handle) Refresh(ctx context.Context, expiration time.Time) error {
	if expiration.Before(h.acquiredAt) {
		return nil
	}
	return h.refresh(ctx, nil)
}

// -- Acquisition --

// refresh re-acquires the reference under the context's wait policy. When a
// stale error triggered the refresh and the refresh cannot complete, that
// trigger is returned instead of the refresh failure.
func (h *Handle) refresh(ctx context.Context, trigger error) error {
	log := h.Logger()
	err := h.context.Wait().Until(ctx, "element reference to be refreshed", func(ctx context.Context) error {
		err := h.acquire(ctx)
		if classify(err) != outcomeStale {
			return err
		}
		// The parent went stale under us; refresh it before resolving again.
		if err := h.context.Refresh(ctx, h.context.AcquiredAt()); err != nil {
			return err
		}
		return h.acquire(ctx)
	})
	if err == nil {
		if trigger != nil {
			log.Debug("Refreshed stale element reference.", zap.Stringer("locator", h.by), zap.Int("index", h.index))
		}
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if trigger != nil {
		log.Debug("Element refresh failed; reporting original stale error.",
			zap.Stringer("locator", h.by), zap.NamedError("refresh_error", err))
		return trigger
	}
	return err
}

// acquire resolves the reference once against the context's current native
// search root. An optional handle records a not-found failure instead of
// returning it.
func (h *Handle) acquire(ctx context.Context) error {
	sc, err := h.context.SearchContext(ctx)
	if err != nil {
		return err
	}

	var el driver.Element
	if h.family == locator.Native {
		el, err = h.locateNative(ctx, sc)
	} else {
		el, err = h.locateByScript(ctx, sc)
	}

	if err != nil {
		if h.index == locator.Optional && driver.IsNotFound(err) {
			h.deferred = err
			h.cached = nil
			h.Logger().Debug("Optional element not found; deferring.", zap.Stringer("locator", h.by))
			return nil
		}
		return err
	}

	h.cached = el
	h.acquiredAt = time.Now()
	h.deferred = nil
	return nil
}

// locateNative uses the driver's own locate call. The implicit wait is
// switched off for the duration so it does not stack on top of the wait
// policy driving this acquisition.
func (h *Handle) locateNative(ctx context.Context, sc driver.SearchContext) (driver.Element, error) {
	prev := h.drv.ImplicitWait()
	h.drv.SetImplicitWait(0)
	defer h.drv.SetImplicitWait(prev)

	if h.index > 0 {
		all, err := sc.FindElements(ctx, h.by)
		if err != nil {
			return nil, err
		}
		if h.index >= len(all) {
			return nil, &driver.IndexError{By: h.by, Requested: h.index + 1, Available: len(all)}
		}
		return all[h.index], nil
	}
	return sc.FindElement(ctx, h.by)
}

func (h *Handle) locateByScript(ctx context.Context, sc driver.SearchContext) (driver.Element, error) {
	// A nil scope means the document root.
	scope, _ := sc.(driver.Element)

	if h.family == locator.DerivedXPath {
		return h.drv.LocateByScript(ctx, scope, driver.LocateByXPath, h.selector)
	}
	return h.drv.LocateByScript(ctx, scope, driver.LocateByCSS, h.selector, h.index)
}
