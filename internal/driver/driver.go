// internal/driver/driver.go
package driver

import (
	"context"
	"time"

	"github.com/xkilldash9x/robustdom/internal/locator"
)

// SearchContext is anything that can resolve child elements.
type SearchContext interface {
	// FindElement returns the first element matching by, or an error matching
	// ErrNoSuchElement.
	FindElement(ctx context.Context, by locator.By) (Element, error)
	// FindElements returns every element matching by, in document order. An
	// empty result is not an error.
	FindElements(ctx context.Context, by locator.By) ([]Element, error)
}

// Element is a native reference to a DOM node. It is only valid until the
// node is detached or the page re-renders; after that every call fails with
// an error matching ErrStaleElement.
type Element interface {
	SearchContext

	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	CSSValue(ctx context.Context, property string) (string, error)

	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	Submit(ctx context.Context) error
	SendKeys(ctx context.Context, keys string) error

	Rect(ctx context.Context) (Rect, error)
	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	IsSelected(ctx context.Context) (bool, error)

	// Screenshot captures the element as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Capabilities describes the locating families a driver supports. They are
// supplied by the environment, not discovered.
type Capabilities struct {
	XPath bool `mapstructure:"xpath" yaml:"xpath"`
	CSS   bool `mapstructure:"css" yaml:"css"`
}

// Driver is the root search context of a browser session.
type Driver interface {
	SearchContext

	Capabilities() Capabilities

	// ImplicitWait is how long native find calls wait for a match.
	ImplicitWait() time.Duration
	SetImplicitWait(d time.Duration)

	// LocateByScript runs one of the embedded locate scripts with scope as the
	// search root (nil for the document). A null result is reported as
	// ErrNoSuchElement.
	LocateByScript(ctx context.Context, scope Element, script Script, args ...interface{}) (Element, error)
}

// Point is a position in CSS pixels.
type Point struct {
	X float64
	Y float64
}

// Size is a width/height pair in CSS pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an element's border box.
type Rect struct {
	Point
	Size
}
