// internal/element/ops.go
package element

import (
	"context"

	"github.com/xkilldash9x/robustdom/internal/driver"
)

// Every operation below runs against the cached native element. A stale
// failure refreshes the handle and retries once.

// Text is the rendered text of the element.
func (h *Handle) Text(ctx context.Context) (string, error) {
	return attempt(ctx, h, func(el driver.Element) (string, error) { return el.Text(ctx) })
}

// TagName is the element's tag name.
func (h *Handle) TagName(ctx context.Context) (string, error) {
	return attempt(ctx, h, func(el driver.Element) (string, error) { return el.TagName(ctx) })
}

// Attribute returns the value of the named attribute.
func (h *Handle) Attribute(ctx context.Context, name string) (string, error) {
	return attempt(ctx, h, func(el driver.Element) (string, error) { return el.Attribute(ctx, name) })
}

// CSSValue returns the computed value of a CSS property.
func (h *Handle) CSSValue(ctx context.Context, property string) (string, error) {
	return attempt(ctx, h, func(el driver.Element) (string, error) { return el.CSSValue(ctx, property) })
}

// Click clicks the element.
func (h *Handle) Click(ctx context.Context) error {
	return act(ctx, h, func(el driver.Element) error { return el.Click(ctx) })
}

// Clear empties a text input or textarea.
func (h *Handle) Clear(ctx context.Context) error {
	return act(ctx, h, func(el driver.Element) error { return el.Clear(ctx) })
}

// Submit submits the form the element belongs to.
func (h *Handle) Submit(ctx context.Context) error {
	return act(ctx, h, func(el driver.Element) error { return el.Submit(ctx) })
}

// SendKeys types keys into the element.
func (h *Handle) SendKeys(ctx context.Context, keys string) error {
	return act(ctx, h, func(el driver.Element) error { return el.SendKeys(ctx, keys) })
}

// Rect is the element's bounding box in CSS pixels.
func (h *Handle) Rect(ctx context.Context) (driver.Rect, error) {
	return attempt(ctx, h, func(el driver.Element) (driver.Rect, error) { return el.Rect(ctx) })
}

// Location is the top-left corner of the element's box.
func (h *Handle) Location(ctx context.Context) (driver.Point, error) {
	r, err := h.Rect(ctx)
	return r.Point, err
}

// Size is the width and height of the element's box.
func (h *Handle) Size(ctx context.Context) (driver.Size, error) {
	r, err := h.Rect(ctx)
	return r.Size, err
}

// IsDisplayed is false for an optional handle with no reference.
func (h *Handle) IsDisplayed(ctx context.Context) (bool, error) {
	return predicate(ctx, h, func(el driver.Element) (bool, error) { return el.IsDisplayed(ctx) })
}

// IsEnabled is false for an optional handle with no reference.
func (h *Handle) IsEnabled(ctx context.Context) (bool, error) {
	return predicate(ctx, h, func(el driver.Element) (bool, error) { return el.IsEnabled(ctx) })
}

// IsSelected fails with ErrNoReference on an optional handle with no
// reference; unlike visibility, selection of a missing element is undefined.
func (h *Handle) IsSelected(ctx context.Context) (bool, error) {
	return attempt(ctx, h, func(el driver.Element) (bool, error) { return el.IsSelected(ctx) })
}

// Screenshot captures the element as PNG bytes.
func (h *Handle) Screenshot(ctx context.Context) ([]byte, error) {
	return attempt(ctx, h, func(el driver.Element) ([]byte, error) { return el.Screenshot(ctx) })
}
