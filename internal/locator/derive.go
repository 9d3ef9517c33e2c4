// internal/locator/derive.go
package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// cssIdent matches values that can be written as bare CSS identifiers.
var cssIdent = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*$`)

// XPathFor derives a context-relative XPath expression for b. CSS locators
// have no XPath form.
func XPathFor(b By) (string, bool) {
	switch b.Kind {
	case XPath:
		return b.Value, true
	case ID:
		return fmt.Sprintf(".//*[@id=%s]", xpathLiteral(b.Value)), true
	case Name:
		return fmt.Sprintf(".//*[@name=%s]", xpathLiteral(b.Value)), true
	case ClassName:
		if strings.ContainsAny(b.Value, " \t\n") {
			return "", false
		}
		return fmt.Sprintf(".//*[contains(concat(' ',normalize-space(@class),' '),%s)]",
			xpathLiteral(" "+b.Value+" ")), true
	case TagName:
		return ".//" + b.Value, true
	case LinkText:
		return fmt.Sprintf(".//a[normalize-space(.)=%s]", xpathLiteral(b.Value)), true
	case PartialLinkText:
		return fmt.Sprintf(".//a[contains(.,%s)]", xpathLiteral(b.Value)), true
	default:
		return "", false
	}
}

// CSSFor derives a CSS selector for b. XPath and link-text locators have no
// CSS form.
func CSSFor(b By) (string, bool) {
	switch b.Kind {
	case CSS:
		return b.Value, true
	case ID:
		if cssIdent.MatchString(b.Value) {
			return "#" + b.Value, true
		}
		return fmt.Sprintf("[id=%s]", cssString(b.Value)), true
	case Name:
		return fmt.Sprintf("[name=%s]", cssString(b.Value)), true
	case ClassName:
		if !cssIdent.MatchString(b.Value) {
			return "", false
		}
		return "." + b.Value, true
	case TagName:
		return b.Value, true
	default:
		return "", false
	}
}

// Positional narrows an XPath expression to its index-th match (0-based).
// The expression is parenthesised so the predicate applies to the whole
// result set rather than per parent.
func Positional(xpath string, index int) string {
	return fmt.Sprintf("(%s)[%d]", xpath, index+1)
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	if len(quoted) == 1 {
		return quoted[0]
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}

// cssString quotes s as a CSS string token.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
