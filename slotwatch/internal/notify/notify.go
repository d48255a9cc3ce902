// Package notify delivers "slot found" findings to the user: structured log,
// Telegram bot, JSON webhook and e-mail. A Router fans a finding out to every
// configured backend.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/slotwatch/slotwatch/internal/config"
)

// Match is one selection set of a cycle that read as available.
type Match struct {
	Label string `json:"label"` // "officetype=STANDART, totalPerson=2 Kişi"
	Text  string `json:"text"`
	HTML  string `json:"html,omitempty"`
}

// Finding is what the poll loop reports when a slot is found.
type Finding struct {
	Profile string    `json:"profile"`
	URL     string    `json:"url"`
	Cycle   int       `json:"cycle"`
	At      time.Time `json:"at"`
	Matches []Match   `json:"matches"`
}

// Notifier delivers a Finding to one backend.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, f Finding) error
}

// FromConfig builds the router for a profile: the log notifier plus every
// target the profile enables.
func FromConfig(cfg config.NotifyConfig, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	notifiers := []Notifier{NewLog(logger)}

	if t := cfg.Telegram; t != nil {
		tg, err := NewTelegram(*t)
		if err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
		notifiers = append(notifiers, tg)
	}
	if w := cfg.Webhook; w != nil {
		notifiers = append(notifiers, NewWebhook(w.URL,
			WithWebhookAttempts(w.Attempts), WithWebhookLogger(logger)))
	}
	if e := cfg.Email; e != nil {
		em, err := NewEmail(*e)
		if err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
		notifiers = append(notifiers, em)
	}
	return NewRouter(logger, notifiers...), nil
}

// Log writes the finding as a structured log line. It never fails.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log notifier. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Notify(_ context.Context, f Finding) error {
	labels := make([]string, len(f.Matches))
	for i, m := range f.Matches {
		labels[i] = m.Label
	}
	l.logger.Info("notify: appointment available",
		"profile", f.Profile, "cycle", f.Cycle, "url", f.URL, "matches", labels)
	return nil
}
