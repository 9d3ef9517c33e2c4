// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/robustdom/internal/config"
	"github.com/xkilldash9x/robustdom/internal/driver/chrome"
	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/page"
)

const (
	defaultStartupTimeout = 30 * time.Second
	shutdownGracePeriod   = 15 * time.Second
)

// Manager owns one Chrome process and hands out pages, one tab each.
type Manager struct {
	logger *zap.Logger
	cfg    config.Interface

	// allocatorCtx manages the browser process; browserCtx is its first
	// target, from which every tab is derived.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc

	sessions map[string]*Session
	mu       sync.Mutex
	// wg tracks open sessions for a graceful shutdown.
	wg sync.WaitGroup
}

// NewManager launches the browser and verifies it responds.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.Interface) (*Manager, error) {
	m := &Manager{
		logger:   logger.Named("browser_manager"),
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	if err := m.launchBrowser(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

func (m *Manager) launchBrowser(ctx context.Context) error {
	m.logger.Info("Initializing browser allocator...")

	m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, m.buildAllocatorOptions()...)
	sugar := m.logger.Sugar()
	m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocatorCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	// The first Run starts the browser. It must not run under a derived
	// timeout context, or the browser would die with it, so the startup
	// deadline cancels the browser context instead.
	timeout := m.cfg.Browser().StartupTimeout
	if timeout <= 0 {
		timeout = defaultStartupTimeout
	}
	timer := time.AfterFunc(timeout, m.browserCancel)
	err := chromedp.Run(m.browserCtx, chromedp.Navigate("about:blank"))
	if !timer.Stop() && err == nil {
		err = fmt.Errorf("browser did not start within %v", timeout)
	}
	if err != nil {
		m.browserCancel()
		m.allocatorCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched successfully and is responsive.")
	return nil
}

// buildAllocatorOptions turns the browser configuration into exec allocator
// options.
func (m *Manager) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	bc := m.cfg.Browser()
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range allocatorFlags(bc, runtime.GOOS) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if bc.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(bc.ExecPath))
	}
	return opts
}

// allocatorFlags computes the command-line flags layered over chromedp's
// defaults. Custom args are written as on the command line (--name or
// --name=value) and win over the computed ones.
func allocatorFlags(bc config.BrowserConfig, goos string) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":                  bc.Headless,
		"ignore-certificate-errors": bc.IgnoreTLSErrors,
		"disable-extensions":        true,
		"disable-gpu":               bc.Headless,
	}
	// Required inside containers.
	if goos == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
	}
	for _, arg := range bc.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}
	return flags
}

// NewPage opens a tab and returns a session whose page resolves elements
// through it. The session must be closed.
func (m *Manager) NewPage(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(m.browserCtx)
	// Runs with no actions just create the target.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	bc, wc := m.cfg.Browser(), m.cfg.Wait()
	drv := chrome.New(tabCtx,
		chrome.WithLogger(m.logger),
		chrome.WithOperationTimeout(bc.OperationTimeout),
		chrome.WithCapabilities(bc.Capabilities),
	)
	drv.SetImplicitWait(wc.Implicit)

	if w, h := bc.Viewport["width"], bc.Viewport["height"]; w > 0 && h > 0 {
		if err := drv.EmulateViewport(ctx, int64(w), int64(h)); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	p := page.New(drv,
		page.WithWait(element.WaitPolicy{Timeout: wc.Timeout, Interval: wc.Interval}),
		page.WithLogger(m.logger),
	)
	s := &Session{Page: p, drv: drv, cancel: cancel}
	m.track(s)
	m.logger.Info("New page opened.", zap.String("page_id", p.ID()))
	return s, nil
}

// track registers s and arranges for Close to deregister it.
func (m *Manager) track(s *Session) {
	m.wg.Add(1)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	s.onClose = func() {
		m.mu.Lock()
		delete(m.sessions, s.ID())
		m.mu.Unlock()
		m.wg.Done()
	}
}

// Open reports how many sessions have not been closed.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every open session, waits for them within ctx, then
// terminates the browser process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser manager shutdown initiated.")

	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()
	for _, s := range open {
		s.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logger.Info("All sessions have completed.")
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocatorCancel != nil {
		m.allocatorCancel()
		select {
		case <-m.allocatorCtx.Done():
		case <-time.After(shutdownGracePeriod):
			return fmt.Errorf("browser process did not exit within %v", shutdownGracePeriod)
		}
	}
	return nil
}
