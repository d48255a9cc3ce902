// CLAUDE:SUMMARY Defines slotwatch profile structs (CheckConfig, selections, sweep, gate, notify targets) and their defaults.
// Package config handles slotwatch profile configuration from YAML files.
package config

import (
	"strings"
	"time"
)

// Defaults for the iDATA Italy-Schengen booking site.
const (
	DefaultURL         = "https://ita-schengen.idata.com.tr/tr"
	DefaultResult      = "#availableDayInfo"
	DefaultUnavailable = "Uygun randevu tarihi bulunmamaktadır"
	DefaultGateTimeout = 2 * time.Minute
	DefaultPath        = "config.yaml"
)

// Selection is one (field, expected visible text) pair applied to a
// <select> on the target page.
type Selection struct {
	Field    string
	Text     string
	Selector string // CSS selector the field resolves to
}

// SweepDim is a field whose values are tried one after another on every
// cycle, after the base selections.
type SweepDim struct {
	Field    string
	Selector string
	Values   []string
}

// Gate describes what stands between the landing page and the form.
type Gate struct {
	// ClickIfVisible lists selectors clicked when present (challenge
	// checkboxes, cookie banners, "book appointment" buttons).
	ClickIfVisible []string `yaml:"click_if_visible"`
	// Await is a selector that must appear before selections start, e.g.
	// the first form field after a captcha solved by hand in a visible window.
	Await   string        `yaml:"await"`
	Timeout time.Duration `yaml:"timeout"`
}

// TelegramConfig targets a Telegram bot chat.
type TelegramConfig struct {
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
	BaseURL string `yaml:"base_url"`
}

// WebhookConfig targets an HTTP endpoint receiving a JSON POST.
type WebhookConfig struct {
	URL      string `yaml:"url"`
	Attempts int    `yaml:"attempts"`
}

// EmailConfig targets an SMTP relay.
type EmailConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	From     string   `yaml:"from"`
	Password string   `yaml:"password"`
	To       []string `yaml:"to"`
}

// NotifyConfig lists the notification targets of a profile. A nil target is
// disabled; the log notifier is always on.
type NotifyConfig struct {
	Telegram *TelegramConfig `yaml:"telegram"`
	Webhook  *WebhookConfig  `yaml:"webhook"`
	Email    *EmailConfig    `yaml:"email"`
}

// CheckConfig is a loaded profile. It is immutable once LoadProfile returns.
type CheckConfig struct {
	Name        string
	URL         string
	Selections  []Selection
	Sweep       []SweepDim
	Result      string
	Unavailable []string
	Gate        Gate
	Notify      NotifyConfig

	// BlockResources lists resource types the browser refuses to load.
	BlockResources []string
}

// ResourceTypes are the accepted block_resources values.
var ResourceTypes = []string{"images", "fonts", "media", "stylesheets"}

// Combinations expands the sweep into the ordered list of selection sets to
// try on each cycle. The first dimension varies slowest. Without a sweep the
// result is a single empty set, so a cycle always reads the page once.
func (c *CheckConfig) Combinations() [][]Selection {
	combos := [][]Selection{{}}
	for _, dim := range c.Sweep {
		next := make([][]Selection, 0, len(combos)*len(dim.Values))
		for _, prefix := range combos {
			for _, v := range dim.Values {
				combo := make([]Selection, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				combo = append(combo, Selection{Field: dim.Field, Text: v, Selector: dim.Selector})
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}

// Label renders a selection set as "field=text, field=text".
func Label(sels []Selection) string {
	parts := make([]string, len(sels))
	for i, s := range sels {
		parts[i] = s.Field + "=" + s.Text
	}
	return strings.Join(parts, ", ")
}

// SelectorFor resolves a field name to a CSS selector. Explicit overrides
// win; a field that already looks like a selector is used as is; anything
// else is treated as an element id.
func SelectorFor(field string, overrides map[string]string) string {
	if sel, ok := overrides[field]; ok && sel != "" {
		return sel
	}
	if strings.ContainsAny(field, "#.[ >:") {
		return field
	}
	return "#" + field
}

func (c *CheckConfig) applyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Result == "" {
		c.Result = DefaultResult
	}
	if len(c.Unavailable) == 0 {
		c.Unavailable = []string{DefaultUnavailable}
	}
	if c.Gate.Await != "" && c.Gate.Timeout <= 0 {
		c.Gate.Timeout = DefaultGateTimeout
	}
	if w := c.Notify.Webhook; w != nil && w.Attempts <= 0 {
		w.Attempts = 3
	}
	if e := c.Notify.Email; e != nil && e.Port == 0 {
		e.Port = 587
	}
}
