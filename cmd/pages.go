// cmd/pages.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/robustdom/internal/browser"
	"github.com/xkilldash9x/robustdom/internal/config"
	"github.com/xkilldash9x/robustdom/internal/observability"
	"github.com/xkilldash9x/robustdom/internal/page"
)

// pageOpener loads url in a fresh page. release closes the page and whatever
// was started to host it.
type pageOpener func(ctx context.Context, cfg config.Interface, url string) (p *page.Page, release func(), err error)

// Overridden in tests.
var openPage pageOpener = openBrowserPage

func openBrowserPage(ctx context.Context, cfg config.Interface, url string) (*page.Page, func(), error) {
	logger := observability.Component("cli")

	mgr, err := browser.NewManager(ctx, logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := mgr.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown was not clean.", zap.Error(err))
		}
	}

	session, err := mgr.NewPage(ctx)
	if err != nil {
		release()
		return nil, nil, err
	}
	if err := session.Navigate(ctx, url); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return session.Page, release, nil
}
