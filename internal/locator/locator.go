// internal/locator/locator.go
package locator

import (
	"fmt"
	"strings"
)

// Kind is the native locating mechanism of a By.
type Kind int

const (
	ID Kind = iota
	Name
	ClassName
	TagName
	CSS
	XPath
	LinkText
	PartialLinkText
)

var kindNames = map[Kind]string{
	ID:              "id",
	Name:            "name",
	ClassName:       "className",
	TagName:         "tagName",
	CSS:             "cssSelector",
	XPath:           "xpath",
	LinkText:        "linkText",
	PartialLinkText: "partialLinkText",
}

// parseAliases maps the short prefixes accepted by Parse to a Kind.
var parseAliases = map[string]Kind{
	"id":              ID,
	"name":            Name,
	"class":           ClassName,
	"classname":       ClassName,
	"tag":             TagName,
	"tagname":         TagName,
	"css":             CSS,
	"xpath":           XPath,
	"link":            LinkText,
	"linktext":        LinkText,
	"partial":         PartialLinkText,
	"partiallinktext": PartialLinkText,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Family is the selector family a handle resolves through.
type Family int

const (
	// Native resolves through the driver's own locate-by-locator call.
	Native Family = iota
	// DerivedXPath resolves through script-based XPath evaluation.
	DerivedXPath
	// DerivedCSS resolves through script-based CSS evaluation with an index argument.
	DerivedCSS
)

func (f Family) String() string {
	switch f {
	case Native:
		return "native"
	case DerivedXPath:
		return "xpath"
	case DerivedCSS:
		return "css"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Index sentinels. Any value >= 0 is a 0-based ordinal into the match list.
const (
	// Cardinal wraps the first matched reference.
	Cardinal = -1
	// Optional wraps a reference that may legitimately be absent.
	Optional = -2
)

// ValidIndex reports whether i is a usable handle index.
func ValidIndex(i int) bool {
	return i >= Optional
}

// By identifies how to find elements. It is an immutable, comparable value.
type By struct {
	Kind  Kind
	Value string
}

func ByID(v string) By              { return By{Kind: ID, Value: v} }
func ByName(v string) By            { return By{Kind: Name, Value: v} }
func ByClassName(v string) By       { return By{Kind: ClassName, Value: v} }
func ByTagName(v string) By         { return By{Kind: TagName, Value: v} }
func ByCSS(v string) By             { return By{Kind: CSS, Value: v} }
func ByXPath(v string) By           { return By{Kind: XPath, Value: v} }
func ByLinkText(v string) By        { return By{Kind: LinkText, Value: v} }
func ByPartialLinkText(v string) By { return By{Kind: PartialLinkText, Value: v} }

func (b By) String() string {
	return fmt.Sprintf("By.%s: %s", b.Kind, b.Value)
}

// IsZero reports whether b was never set.
func (b By) IsZero() bool {
	return b == By{}
}

// Parse reads the "kind=value" notation used on the command line and in
// configuration files, e.g. "css=.row" or "xpath=//li". A bare expression
// without a recognised prefix is treated as a CSS selector.
func Parse(expr string) (By, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return By{}, fmt.Errorf("locator: empty expression")
	}
	prefix, value, found := strings.Cut(expr, "=")
	if found {
		if kind, ok := parseAliases[strings.ToLower(strings.TrimSpace(prefix))]; ok {
			value = strings.TrimSpace(value)
			if value == "" {
				return By{}, fmt.Errorf("locator: empty value in %q", expr)
			}
			return By{Kind: kind, Value: value}, nil
		}
	}
	if strings.HasPrefix(expr, "/") || strings.HasPrefix(expr, "(") || strings.HasPrefix(expr, "./") {
		return ByXPath(expr), nil
	}
	return ByCSS(expr), nil
}
