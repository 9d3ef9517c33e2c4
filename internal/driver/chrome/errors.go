// internal/driver/chrome/errors.go
package chrome

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/runtime"

	"github.com/xkilldash9x/robustdom/internal/driver"
)

// staleMarker is thrown by the element scripts when the receiver has been
// detached from the document.
const staleMarker = "robustdom: stale element"

// staleMessages are DevTools protocol errors meaning a node id no longer
// refers to a live node.
var staleMessages = []string{
	"could not find node with given id",
	"no node with given id found",
	"node with given id does not belong to the document",
	"node is detached from document",
	"cannot find context with specified id",
	"cannot find object with given id",
	staleMarker,
}

// classify maps protocol and script failures onto the driver error kinds.
// Context errors are passed through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isStaleMessage(protocolMessage(err)) {
		return fmt.Errorf("%w: %v", driver.ErrStaleElement, err)
	}
	return err
}

func protocolMessage(err error) string {
	var perr *cdproto.Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	var exc *runtime.ExceptionDetails
	if errors.As(err, &exc) {
		return exc.Error()
	}
	return err.Error()
}

func isStaleMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range staleMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
