// CLAUDE:SUMMARY Owns the single Chrome session of a slotwatch run: launch (headless or visible), stealth page, form interaction.
// Package browser drives Chrome through Rod for slotwatch: launch or connect,
// open one stealth page, navigate, pass the entry gate, select options by
// visible text and read the availability element.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Config configures the browser manager.
type Config struct {
	// Headless launches Chrome without a window. False opens a visible
	// window the user can take over once a slot is found.
	Headless bool

	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Bin overrides the Chrome binary. Empty = launcher lookup/download.
	Bin string

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	// StepTimeout bounds each wait for an element or a page load. Default: 30s.
	StepTimeout time.Duration

	// Settle is the pause after navigation and after each selection so the
	// form can refresh dependent fields. Default: 2s. Negative disables it.
	Settle time.Duration

	// Result and Unavailable drive ReadState classification.
	Result      string
	Unavailable []string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.StepTimeout <= 0 {
		c.StepTimeout = 30 * time.Second
	}
	if c.Settle < 0 {
		c.Settle = 0
	} else if c.Settle == 0 {
		c.Settle = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns one Chrome process and one page for the lifetime of a run.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	url     string
	closed  bool
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Headless reports whether the browser runs without a window.
func (m *Manager) Headless() bool { return m.cfg.Headless }

// Start launches Chrome (or connects to a remote instance) and opens the
// stealth page used by every later call.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return nil
	}

	log := m.cfg.Logger
	var wsURL string

	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := newLauncher(m.cfg)
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headless", m.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		m.cleanup()
		return fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b

	p, err := stealth.Page(b)
	if err != nil {
		m.cleanup()
		return fmt.Errorf("browser: create tab: %w", err)
	}
	if len(m.cfg.ResourceBlocking) > 0 {
		applyResourceBlocking(p, m.cfg.ResourceBlocking)
	}
	m.page = p
	return nil
}

// newLauncher builds the launcher for a local Chrome. Headless is set
// explicitly both ways: the launcher default is headless.
func newLauncher(cfg Config) *launcher.Launcher {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	// Anti-detection flags.
	return l.Set("disable-blink-features", "AutomationControlled")
}

// Close shuts down the page, Chrome and the launcher.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.cleanup()
}

func (m *Manager) cleanup() error {
	var firstErr error
	if m.page != nil {
		if err := m.page.Close(); err != nil {
			firstErr = err
		}
		m.page = nil
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return firstErr
}

// active returns the page bound to ctx, or an error when Start was not called.
func (m *Manager) active(ctx context.Context) (*rod.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page == nil {
		return nil, fmt.Errorf("browser: no active page")
	}
	return m.page.Context(ctx), nil
}

func (m *Manager) settle(ctx context.Context) error {
	if m.cfg.Settle <= 0 {
		return nil
	}
	t := time.NewTimer(m.cfg.Settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
