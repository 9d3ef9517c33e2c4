// internal/driver/fakedriver/element.go
package fakedriver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// Element is a native reference issued by a Document.
type Element struct {
	doc  *Document
	node *html.Node
	gen  int
}

var _ driver.Element = (*Element)(nil)

// Node exposes the underlying html node for assertions.
func (e *Element) Node() *html.Node { return e.node }

// Generation is the render generation the element was issued in.
func (e *Element) Generation() int { return e.gen }

func (e *Element) String() string {
	return fmt.Sprintf("fake<%s>@%d", describe(e.node), e.gen)
}

// begin validates the element and counts the call. The caller must unlock.
func (e *Element) begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.doc.mu.Lock()
	e.doc.calls[op]++
	if err := e.doc.checkLocked(e); err != nil {
		e.doc.mu.Unlock()
		return err
	}
	return nil
}

func (e *Element) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	if err := e.begin(ctx, "scopedFind"); err != nil {
		return nil, err
	}
	e.doc.mu.Unlock()
	return e.doc.findFirst(ctx, e.node, by)
}

func (e *Element) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	if err := e.begin(ctx, "scopedFindAll"); err != nil {
		return nil, err
	}
	e.doc.mu.Unlock()
	return e.doc.findAll(ctx, e.node, by)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.begin(ctx, "text"); err != nil {
		return "", err
	}
	defer e.doc.mu.Unlock()
	var b strings.Builder
	collectText(e.node, &b)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	if err := e.begin(ctx, "tagName"); err != nil {
		return "", err
	}
	defer e.doc.mu.Unlock()
	return e.node.Data, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.begin(ctx, "attribute"); err != nil {
		return "", err
	}
	defer e.doc.mu.Unlock()
	return attr(e.node, strings.ToLower(name)), nil
}

func (e *Element) CSSValue(ctx context.Context, property string) (string, error) {
	if err := e.begin(ctx, "cssValue"); err != nil {
		return "", err
	}
	defer e.doc.mu.Unlock()
	return inlineStyle(e.node)[strings.ToLower(property)], nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.begin(ctx, "click"); err != nil {
		return err
	}
	e.doc.events = append(e.doc.events, "click:"+describe(e.node))
	hook := e.doc.OnClick
	e.doc.mu.Unlock()
	if hook != nil {
		hook(e.doc, e.node)
	}
	return nil
}

func (e *Element) Clear(ctx context.Context) error {
	if err := e.begin(ctx, "clear"); err != nil {
		return err
	}
	defer e.doc.mu.Unlock()
	setAttr(e.node, "value", "")
	e.doc.events = append(e.doc.events, "clear:"+describe(e.node))
	return nil
}

func (e *Element) Submit(ctx context.Context) error {
	if err := e.begin(ctx, "submit"); err != nil {
		return err
	}
	defer e.doc.mu.Unlock()
	e.doc.events = append(e.doc.events, "submit:"+describe(e.node))
	return nil
}

func (e *Element) SendKeys(ctx context.Context, keys string) error {
	if err := e.begin(ctx, "sendKeys"); err != nil {
		return err
	}
	defer e.doc.mu.Unlock()
	setAttr(e.node, "value", attr(e.node, "value")+keys)
	e.doc.events = append(e.doc.events, "keys:"+describe(e.node)+":"+keys)
	return nil
}

// Rect reads the box from data-x, data-y, data-width and data-height.
func (e *Element) Rect(ctx context.Context) (driver.Rect, error) {
	if err := e.begin(ctx, "rect"); err != nil {
		return driver.Rect{}, err
	}
	defer e.doc.mu.Unlock()
	num := func(name string) float64 {
		f, _ := strconv.ParseFloat(attr(e.node, name), 64)
		return f
	}
	return driver.Rect{
		Point: driver.Point{X: num("data-x"), Y: num("data-y")},
		Size:  driver.Size{Width: num("data-width"), Height: num("data-height")},
	}, nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.begin(ctx, "isDisplayed"); err != nil {
		return false, err
	}
	defer e.doc.mu.Unlock()
	for n := e.node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if _, hidden := lookupAttr(n, "hidden"); hidden {
			return false, nil
		}
		if inlineStyle(n)["display"] == "none" {
			return false, nil
		}
	}
	return true, nil
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	if err := e.begin(ctx, "isEnabled"); err != nil {
		return false, err
	}
	defer e.doc.mu.Unlock()
	_, disabled := lookupAttr(e.node, "disabled")
	return !disabled, nil
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	if err := e.begin(ctx, "isSelected"); err != nil {
		return false, err
	}
	defer e.doc.mu.Unlock()
	_, selected := lookupAttr(e.node, "selected")
	_, checked := lookupAttr(e.node, "checked")
	return selected || checked, nil
}

// Screenshot returns a placeholder payload naming the element.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	if err := e.begin(ctx, "screenshot"); err != nil {
		return nil, err
	}
	defer e.doc.mu.Unlock()
	return []byte("png:" + describe(e.node)), nil
}

func collectText(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			collectText(c, b)
		}
	}
}

func inlineStyle(n *html.Node) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(prop))] = strings.TrimSpace(val)
	}
	return out
}

func describe(n *html.Node) string {
	s := n.Data
	if id := attr(n, "id"); id != "" {
		s += "#" + id
	}
	return s
}
