// internal/driver/fakedriver/document.go
package fakedriver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/robustdom/internal/driver"
	"github.com/xkilldash9x/robustdom/internal/locator"
)

// Document is an in-memory DOM implementing driver.Driver. Every element it
// hands out is tied to the render generation it was issued in; Rerender
// invalidates all of them at once, the way a client-side re-render does.
type Document struct {
	mu           sync.Mutex
	root         *html.Node
	generation   int
	caps         driver.Capabilities
	implicitWait time.Duration

	waitHistory []time.Duration
	calls       map[string]int
	events      []string

	// OnClick runs after a click is recorded, with the document unlocked.
	OnClick func(d *Document, n *html.Node)
}

var _ driver.Driver = (*Document)(nil)

// Parse builds a document from markup. Both capability flags start enabled.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("fakedriver: parse markup: %w", err)
	}
	return &Document{
		root:  root,
		caps:  driver.Capabilities{XPath: true, CSS: true},
		calls: make(map[string]int),
	}, nil
}

// MustParse is Parse for fixtures; it panics on malformed markup.
func MustParse(markup string) *Document {
	d, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return d
}

// -- driver.Driver --

func (d *Document) Capabilities() driver.Capabilities {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caps
}

// SetCapabilities overrides the capability flags reported to handles.
func (d *Document) SetCapabilities(c driver.Capabilities) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.caps = c
}

func (d *Document) ImplicitWait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.implicitWait
}

func (d *Document) SetImplicitWait(w time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.implicitWait = w
	d.waitHistory = append(d.waitHistory, w)
}

func (d *Document) FindElement(ctx context.Context, by locator.By) (driver.Element, error) {
	return d.findFirst(ctx, d.root, by)
}

func (d *Document) FindElements(ctx context.Context, by locator.By) ([]driver.Element, error) {
	return d.findAll(ctx, d.root, by)
}

func (d *Document) LocateByScript(ctx context.Context, scope driver.Element, script driver.Script, args ...interface{}) (driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls["script:"+script.Name]++

	root := d.root
	if scope != nil {
		el, ok := scope.(*Element)
		if !ok {
			return nil, fmt.Errorf("fakedriver: foreign scope element %T", scope)
		}
		if err := d.checkLocked(el); err != nil {
			return nil, err
		}
		root = el.node
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("fakedriver: %s called without a selector", script.Name)
	}
	selector, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("fakedriver: %s selector must be a string, got %T", script.Name, args[0])
	}

	var matches []*html.Node
	var err error
	index := 0
	switch script.Name {
	case driver.LocateByXPath.Name:
		matches, err = queryXPath(root, selector)
	case driver.LocateByCSS.Name:
		matches, err = queryCSS(root, selector)
		if len(args) > 1 {
			if i, ok := args[1].(int); ok && i > 0 {
				index = i
			}
		}
	default:
		return nil, fmt.Errorf("fakedriver: unknown script %q", script.Name)
	}
	if err != nil {
		return nil, err
	}
	if index >= len(matches) {
		return nil, fmt.Errorf("%w: %s returned null for %q", driver.ErrNoSuchElement, script.Name, selector)
	}
	return d.issueLocked(matches[index]), nil
}

// -- Test controls --

// Rerender invalidates every element issued so far without changing the DOM.
func (d *Document) Rerender() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.events = append(d.events, "rerender")
}

// Remove detaches the first node matching the CSS selector.
func (d *Document) Remove(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	matches, err := queryCSS(d.root, selector)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("fakedriver: nothing matches %q", selector)
	}
	n := matches[0]
	n.Parent.RemoveChild(n)
	d.events = append(d.events, "remove:"+selector)
	return nil
}

// Append parses markup as children of the first node matching the CSS selector.
func (d *Document) Append(selector, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	matches, err := queryCSS(d.root, selector)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("fakedriver: nothing matches %q", selector)
	}
	parent := matches[0]
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("fakedriver: parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

// Calls returns how many times the named operation ran ("find", "findAll",
// "text", "click", "script:locateByXPath", ...).
func (d *Document) Calls(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[name]
}

// WaitHistory returns every value passed to SetImplicitWait, in order.
func (d *Document) WaitHistory() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.waitHistory...)
}

// Events returns the recorded interaction log ("click:button#go", ...).
func (d *Document) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

// Generation returns the current render generation.
func (d *Document) Generation() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// -- internals --

func (d *Document) issueLocked(n *html.Node) *Element {
	return &Element{doc: d, node: n, gen: d.generation}
}

func (d *Document) checkLocked(el *Element) error {
	if el.doc != d {
		return fmt.Errorf("fakedriver: element belongs to another document")
	}
	if el.gen != d.generation || !d.attachedLocked(el.node) {
		return fmt.Errorf("%w: <%s> is no longer attached to the document", driver.ErrStaleElement, el.node.Data)
	}
	return nil
}

func (d *Document) attachedLocked(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

func (d *Document) findAll(ctx context.Context, root *html.Node, by locator.By) ([]driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls["findAll"]++

	nodes, err := query(root, by)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Element, len(nodes))
	for i, n := range nodes {
		out[i] = d.issueLocked(n)
	}
	return out, nil
}

func (d *Document) findFirst(ctx context.Context, root *html.Node, by locator.By) (driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls["find"]++

	nodes, err := query(root, by)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, driver.NotFound(by)
	}
	return d.issueLocked(nodes[0]), nil
}
