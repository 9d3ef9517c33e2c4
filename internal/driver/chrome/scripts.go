// internal/driver/chrome/scripts.go
package chrome

import (
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/robustdom/internal/driver"
)

// hitAttr tags script results so the DOM domain, which only deals in node
// ids, can pick them up.
const hitAttr = "data-robustdom-hit"

// Element scripts run with `this` bound to the element. Each one refuses to
// act on a detached receiver.
const (
	guard = `if (!this.isConnected) { throw new Error("` + staleMarker + `"); }`

	textJS      = `function() {` + guard + ` return (this.innerText || this.textContent || "").replace(/\s+/g, " ").trim(); }`
	tagNameJS   = `function() {` + guard + ` return this.tagName.toLowerCase(); }`
	attributeJS = `function(name) {` + guard + ` var v = this.getAttribute(name); return v === null ? "" : v; }`
	cssValueJS  = `function(prop) {` + guard + ` return window.getComputedStyle(this).getPropertyValue(prop); }`
	clearJS     = `function() {` + guard + `
  if (this.isContentEditable) { this.textContent = ""; } else { this.value = ""; }
  this.dispatchEvent(new Event("input", {bubbles: true}));
  this.dispatchEvent(new Event("change", {bubbles: true}));
}`
	submitJS = `function() {` + guard + `
  var form = this.tagName === "FORM" ? this : this.form;
  if (!form) { throw new Error("element is not inside a form"); }
  if (form.requestSubmit) { form.requestSubmit(); } else { form.submit(); }
}`
	displayedJS = `function() {` + guard + `
  var style = window.getComputedStyle(this);
  if (style.display === "none" || style.visibility === "hidden") { return false; }
  return !!(this.offsetWidth || this.offsetHeight || this.getClientRects().length);
}`
	enabledJS  = `function() {` + guard + ` return !this.disabled; }`
	selectedJS = `function() {` + guard + ` return !!(this.checked || this.selected); }`
	focusJS    = `function() {` + guard + ` this.focus(); }`
)

// markXPathJS tags every element matching an XPath expression, evaluated
// relative to `this`, and returns how many it tagged.
const markXPathJS = `function(expr, attr, token) {
  var doc = this.ownerDocument || this;
  var res = doc.evaluate(expr, this, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
  var n = 0;
  for (var i = 0; i < res.snapshotLength; i++) {
    var el = res.snapshotItem(i);
    if (el.nodeType === 1) { el.setAttribute(attr, token); n++; }
  }
  return n;
}`

// unmarkJS removes a marker from every element carrying token.
const unmarkJS = `function(attr, token) {
  var doc = this.ownerDocument || this;
  var els = doc.querySelectorAll("[" + attr + "=\"" + token + "\"]");
  for (var i = 0; i < els.length; i++) { els[i].removeAttribute(attr); }
  return els.length;
}`

// locateWrapper wraps one of the locate scripts so its result is tagged
// instead of returned. The script sees the scope as a one-element array, or
// an empty one when `this` is the document.
func locateWrapper(script driver.Script) string {
	return fmt.Sprintf(`function(attr, token, args) {
  var scope = (this.nodeType === 9) ? [] : [this];
  var el = (%s).apply(null, [scope].concat(args));
  if (!el) { return false; }
  el.setAttribute(attr, token);
  return true;
}`, script.Source)
}

// applyExpression renders a call of fn with `this` bound to the document, for
// use where there is no element to call the function on.
func applyExpression(fn string, args ...interface{}) (string, error) {
	if args == nil {
		args = []interface{}{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encoding script arguments: %w", err)
	}
	return fmt.Sprintf("(%s).apply(document, %s)", fn, encoded), nil
}

// hitSelector matches the elements tagged with token.
func hitSelector(token string) string {
	return fmt.Sprintf(`[%s="%s"]`, hitAttr, token)
}

// decode unmarshals a by-value script result. An empty or null result leaves
// v untouched and reports false.
func decode(raw []byte, v interface{}) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decoding script result %s: %w", raw, err)
	}
	return true, nil
}
