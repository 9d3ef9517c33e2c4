// internal/driver/errors.go
package driver

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/robustdom/internal/locator"
)

var (
	// ErrNoSuchElement means nothing matched the locator at resolution time.
	ErrNoSuchElement = errors.New("no such element")
	// ErrStaleElement means a native reference no longer points into the live DOM.
	ErrStaleElement = errors.New("stale element reference")
	// ErrTimeout means a wait policy gave up.
	ErrTimeout = errors.New("timed out")
)

// IndexError reports that fewer elements matched than the requested ordinal.
type IndexError struct {
	By locator.By
	// Requested is 1-based.
	Requested int
	Available int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("too few elements located %s: need: %d; have: %d", e.By, e.Requested, e.Available)
}

// Is lets an IndexError satisfy errors.Is(err, ErrNoSuchElement).
func (e *IndexError) Is(target error) bool {
	return target == ErrNoSuchElement
}

// NotFound builds the error returned when by matched nothing.
func NotFound(by locator.By) error {
	return fmt.Errorf("%w: unable to locate %s", ErrNoSuchElement, by)
}

// IsStale reports whether err means the native reference went stale.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleElement)
}

// IsNotFound reports whether err means nothing matched, including index errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}
