// internal/browser/integration_test.go
package browser_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/robustdom/internal/browser"
	"github.com/xkilldash9x/robustdom/internal/config"
	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/locator"
	"github.com/xkilldash9x/robustdom/internal/page"
)

const (
	browserTestTimeout = 2 * time.Minute
	shutdownTimeout    = 15 * time.Second
)

const fixturePage = `<!DOCTYPE html>
<html><head><title>fixture</title></head><body>
<h1 id="title">Inventory</h1>
<div id="panel"><span class="status">v1</span></div>
<button id="rerender" onclick="document.getElementById('panel').innerHTML='<span class=&quot;status&quot;>v2</span>'">again</button>
<ul id="items">
  <li class="item" data-sku="a">Apple</li>
  <li class="item" data-sku="b">Banana</li>
</ul>
<a href="/help">Get help</a>
<input id="name" type="text">
</body></html>`

// chromePath finds a Chrome binary, honouring ROBUSTDOM_CHROME.
func chromePath() string {
	if p := os.Getenv("ROBUSTDOM_CHROME"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func newSession(t *testing.T) (context.Context, *browser.Session) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests are skipped in short mode")
	}
	path := chromePath()
	if path == "" {
		t.Skip("no Chrome or Chromium binary found; set ROBUSTDOM_CHROME")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fixturePage)
	}))
	t.Cleanup(srv.Close)

	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.ExecPath = path
	cfg.BrowserCfg.Headless = true
	cfg.WaitCfg = config.WaitConfig{Timeout: 2 * time.Second, Interval: 50 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), browserTestTimeout)
	t.Cleanup(cancel)

	mgr, err := browser.NewManager(ctx, zaptest.NewLogger(t), cfg)
	require.NoError(t, err, "failed to launch %s", path)
	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		assert.NoError(t, mgr.Shutdown(shutdownCtx))
	})

	s, err := mgr.NewPage(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Navigate(ctx, srv.URL))
	return ctx, s
}

func TestChrome_HandlesAgainstLivePage(t *testing.T) {
	ctx, s := newSession(t)

	t.Run("locator kinds", func(t *testing.T) {
		tests := []struct {
			by   locator.By
			want string
		}{
			{locator.ByID("title"), "Inventory"},
			{locator.ByCSS("#items > li.item"), "Apple"},
			{locator.ByXPath("//li[@data-sku='b']"), "Banana"},
			{locator.ByLinkText("Get help"), "Get help"},
			{locator.ByPartialLinkText("help"), "Get help"},
		}
		for _, tt := range tests {
			t.Run(tt.by.String(), func(t *testing.T) {
				var h *element.Handle
				var err error
				if tt.by.Kind == locator.CSS {
					h, err = s.FindIndexed(ctx, tt.by, 0)
				} else {
					h, err = s.Find(ctx, tt.by)
				}
				require.NoError(t, err)
				text, err := h.Text(ctx)
				require.NoError(t, err)
				assert.Equal(t, tt.want, text)
			})
		}
	})

	t.Run("stale handles heal", func(t *testing.T) {
		panel, err := s.Find(ctx, locator.ByID("panel"))
		require.NoError(t, err)
		status, err := panel.Find(ctx, locator.ByClassName("status"))
		require.NoError(t, err)

		text, err := status.Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "v1", text)

		button, err := s.Find(ctx, locator.ByID("rerender"))
		require.NoError(t, err)
		require.NoError(t, button.Click(ctx))

		text, err = status.Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "v2", text)
	})

	t.Run("optional absence", func(t *testing.T) {
		h, err := s.FindOptional(ctx, locator.ByID("promo"))
		require.NoError(t, err)
		assert.False(t, h.HasReference(ctx))
	})

	t.Run("keyed collection", func(t *testing.T) {
		kind := page.Kind[string, *page.Component]{
			Name: "item",
			New: func(h *element.Handle, parent page.Container) (*page.Component, error) {
				return page.NewComponent(h, parent), nil
			},
			Key: func(ctx context.Context, h *element.Handle) (string, error) {
				return h.Attribute(ctx, "data-sku")
			},
		}
		m, err := page.NewMap(ctx, s.Page, kind, locator.ByClassName("item"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, m.Keys())
	})

	t.Run("geometry and screenshot", func(t *testing.T) {
		title, err := s.Find(ctx, locator.ByID("title"))
		require.NoError(t, err)

		displayed, err := title.IsDisplayed(ctx)
		require.NoError(t, err)
		assert.True(t, displayed)

		size, err := title.Size(ctx)
		require.NoError(t, err)
		assert.Greater(t, size.Width, 0.0)

		png, err := title.Screenshot(ctx)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	})

	t.Run("navigation reloads the page", func(t *testing.T) {
		before := s.AcquiredAt()
		require.NoError(t, s.Navigate(ctx, "about:blank"))
		assert.False(t, s.AcquiredAt().Before(before))
	})
}
