// internal/browser/session.go
package browser

import (
	"context"
	"sync"

	"github.com/xkilldash9x/robustdom/internal/driver/chrome"
	"github.com/xkilldash9x/robustdom/internal/page"
)

// Session is a page bound to its own browser tab.
type Session struct {
	*page.Page

	drv     *chrome.Driver
	cancel  context.CancelFunc
	onClose func()
	once    sync.Once
}

// Navigate loads url and marks the page as reloaded, so handles found before
// the navigation re-acquire on their next use.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.drv.Navigate(ctx, url); err != nil {
		return err
	}
	s.Page.Reload()
	return nil
}

// Close closes the tab. It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
		s.Page.Logger().Debug("Page closed.")
	})
}
