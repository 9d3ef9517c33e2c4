// internal/driver/chrome/element.go
package chrome

import (
	"context"
	"fmt"
	"math"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

var _ driver.Element = (*Element)(nil)

// Element is a node id held by a Driver. Node ids are invalidated by the
// browser when the node leaves the document, which surfaces as
// driver.ErrStaleElement on the next call.
type Element struct {
	d    *Driver
	node *cdp.Node
}

func (e *Element) Node() *cdp.Node { return e.node }

func (e *Element) String() string {
	return fmt.Sprintf("chrome<%s>#%d", e.node.LocalName, e.node.NodeID)
}

func (e *Element) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	return e.d.findFirst(ctx, e.node, by)
}

func (e *Element) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	return e.d.find(ctx, e.node, by)
}

// eval calls fn on the element and decodes the result into res.
func (e *Element) eval(ctx context.Context, op, fn string, res interface{}, args ...interface{}) error {
	return e.d.run(ctx, op, chromedp.ActionFunc(func(c context.Context) error {
		return e.d.call(c, e.node, fn, res, args...)
	}))
}

func (e *Element) str(ctx context.Context, op, fn string, args ...interface{}) (string, error) {
	var s string
	if err := e.eval(ctx, op, fn, &s, args...); err != nil {
		return "", err
	}
	return s, nil
}

func (e *Element) flag(ctx context.Context, op, fn string) (bool, error) {
	var b bool
	if err := e.eval(ctx, op, fn, &b); err != nil {
		return false, err
	}
	return b, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.str(ctx, "text", textJS)
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	return e.str(ctx, "tag name", tagNameJS)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.str(ctx, "attribute "+name, attributeJS, name)
}

func (e *Element) CSSValue(ctx context.Context, property string) (string, error) {
	return e.str(ctx, "css "+property, cssValueJS, property)
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	return e.flag(ctx, "displayed", displayedJS)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	return e.flag(ctx, "enabled", enabledJS)
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	return e.flag(ctx, "selected", selectedJS)
}

func (e *Element) Clear(ctx context.Context) error {
	return e.eval(ctx, "clear", clearJS, nil)
}

func (e *Element) Submit(ctx context.Context) error {
	return e.eval(ctx, "submit", submitJS, nil)
}

// Click scrolls the element into view and dispatches a real mouse click at
// the centre of its border box.
func (e *Element) Click(ctx context.Context) error {
	return e.d.run(ctx, "click", chromedp.ActionFunc(func(c context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID).Do(c); err != nil {
			return err
		}
		box, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(c)
		if err != nil {
			return err
		}
		r := quadRect(box.Border)
		return chromedp.MouseClickXY(r.X+r.Width/2, r.Y+r.Height/2).Do(c)
	}))
}

// SendKeys focuses the element and types keys through the input domain.
func (e *Element) SendKeys(ctx context.Context, keys string) error {
	return e.d.run(ctx, "send keys", chromedp.ActionFunc(func(c context.Context) error {
		if err := e.d.call(c, e.node, focusJS, nil); err != nil {
			return err
		}
		return chromedp.KeyEvent(keys).Do(c)
	}))
}

func (e *Element) Rect(ctx context.Context) (driver.Rect, error) {
	var r driver.Rect
	err := e.d.run(ctx, "rect", chromedp.ActionFunc(func(c context.Context) error {
		box, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(c)
		if err != nil {
			return err
		}
		r = quadRect(box.Border)
		return nil
	}))
	return r, err
}

// Screenshot captures the element's border box in page coordinates.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := e.d.run(ctx, "screenshot", chromedp.ActionFunc(func(c context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID).Do(c); err != nil {
			return err
		}
		box, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(c)
		if err != nil {
			return err
		}
		_, _, _, _, viewport, _, err := page.GetLayoutMetrics().Do(c)
		if err != nil {
			return err
		}
		r := quadRect(box.Border)
		if r.Width == 0 || r.Height == 0 {
			return fmt.Errorf("element has an empty border box")
		}
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithCaptureBeyondViewport(true).
			WithClip(&page.Viewport{
				X:      r.X + viewport.PageX,
				Y:      r.Y + viewport.PageY,
				Width:  r.Width,
				Height: r.Height,
				Scale:  1,
			}).Do(c)
		return err
	}))
	return buf, err
}

// quadRect returns the axis-aligned bounds of a box-model quad.
func quadRect(q dom.Quad) driver.Rect {
	if len(q) < 8 {
		return driver.Rect{}
	}
	x := math.Min(math.Min(q[0], q[2]), math.Min(q[4], q[6]))
	y := math.Min(math.Min(q[1], q[3]), math.Min(q[5], q[7]))
	w := math.Max(math.Max(q[0], q[2]), math.Max(q[4], q[6])) - x
	h := math.Max(math.Max(q[1], q[3]), math.Max(q[5], q[7])) - y
	return driver.Rect{Point: driver.Point{X: x, Y: y}, Size: driver.Size{Width: w, Height: h}}
}
