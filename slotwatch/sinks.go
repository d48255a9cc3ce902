package slotwatch

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/slotwatch/slotwatch/internal/browser"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/journal"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/notify"
)

// Notifier delivers a Finding. Re-exported from internal.
type Notifier = notify.Notifier

// Finding is what a run reports when a slot is found.
type Finding = notify.Finding

// Match is one available selection set of a Finding.
type Match = notify.Match

// NewNotifier builds the fan-out notifier of a profile: the log line plus
// every target the profile enables.
func NewNotifier(cfg *CheckConfig, logger *slog.Logger) (Notifier, error) {
	r, err := notify.FromConfig(cfg.Notify, logger)
	if err != nil {
		return nil, fmt.Errorf("slotwatch: %w", err)
	}
	return r, nil
}

// Journal records every cycle in SQLite.
type Journal = journal.Journal

// JournalMemory keeps the journal in memory for the life of the process.
const JournalMemory = ":memory:"

// OpenJournal opens the cycle journal at path (JournalMemory for none on disk).
func OpenJournal(path string, logger *slog.Logger) (*Journal, error) {
	if path == "" {
		path = JournalMemory
	}
	return journal.Open(path, journal.WithLogger(logger))
}

// BrowserConfig configures the Chrome driver.
type BrowserConfig = browser.Config

// BrowserManager owns the Chrome session of a run.
type BrowserManager = browser.Manager

// NewBrowser creates the Chrome driver. Call Start before the first cycle.
func NewBrowser(cfg BrowserConfig) *BrowserManager {
	return browser.NewManager(cfg)
}

// BrowserConfigFor derives the driver configuration from a profile.
func BrowserConfigFor(cfg *CheckConfig, headless bool, logger *slog.Logger) BrowserConfig {
	return BrowserConfig{
		Headless:         headless,
		ResourceBlocking: cfg.BlockResources,
		Result:           cfg.Result,
		Unavailable:      cfg.Unavailable,
		Logger:           logger,
	}
}

var _ interface {
	Browser
	Gater
} = (*browser.Manager)(nil)
