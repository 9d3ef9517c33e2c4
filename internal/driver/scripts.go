// internal/driver/scripts.go
package driver

import (
	_ "embed"
)

// Script is one of the embedded locate scripts. Each source is a function
// expression taking (context, selector[, index]) where context is an array
// holding the scope element, or empty for the document.
type Script struct {
	Name   string
	Source string
}

var (
	//go:embed scripts/locateByXPath.js
	locateByXPathSource string
	//go:embed scripts/locateByCSS.js
	locateByCSSSource string
)

var (
	LocateByXPath = Script{Name: "locateByXPath", Source: locateByXPathSource}
	LocateByCSS   = Script{Name: "locateByCSS", Source: locateByCSSSource}
)
