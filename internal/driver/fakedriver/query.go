// internal/driver/fakedriver/query.go
package fakedriver

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/robustdom/internal/locator"
)

// query resolves by against the descendants of root.
func query(root *html.Node, by locator.By) ([]*html.Node, error) {
	switch by.Kind {
	case locator.XPath, locator.LinkText, locator.PartialLinkText:
		xp, _ := locator.XPathFor(by)
		return queryXPath(root, xp)
	default:
		if css, ok := locator.CSSFor(by); ok {
			return queryCSS(root, css)
		}
		if xp, ok := locator.XPathFor(by); ok {
			return queryXPath(root, xp)
		}
		return nil, fmt.Errorf("fakedriver: cannot evaluate %s", by)
	}
}

func queryXPath(root *html.Node, expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("fakedriver: invalid xpath %q: %w", expr, err)
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out, nil
}

// queryCSS returns the elements below root matching a CSS selector list,
// in document order. As with querySelectorAll, combinators may reach
// ancestors outside root but root itself is never a match.
func queryCSS(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("fakedriver: invalid css %q: %w", selector, err)
	}
	return goquery.NewDocumentFromNode(root).FindMatcher(sel).Nodes, nil
}

func attr(n *html.Node, name string) string {
	v, _ := lookupAttr(n, name)
	return v
}

func lookupAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}
