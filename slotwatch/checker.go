// Package slotwatch polls an appointment booking form until a slot shows up.
//
// Each cycle loads the booking page, applies the profile's selections in
// order, reads the availability element and either reports the slot or
// sleeps for the configured interval. Cycles are strictly sequential and
// share one browser session.
package slotwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/slotwatch/slotwatch/internal/config"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/journal"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/notify"
)

// DefaultInterval is the pause between two cycles.
const DefaultInterval = 600 * time.Second

// ErrNoSlot is returned when MaxCycles cycles ran without finding a slot.
var ErrNoSlot = errors.New("slotwatch: no slot found")

// Browser is the page driver the checker needs. browser.Manager implements
// it; tests use a scripted fake.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	SelectOption(ctx context.Context, field, text string) error
	ReadState(ctx context.Context) (Reading, error)
}

// Gater is implemented by browsers that can pass an entry gate (challenge
// checkbox, button, hand-solved captcha).
type Gater interface {
	ClickIfVisible(ctx context.Context, selector string) error
	Await(ctx context.Context, selector string, timeout time.Duration) error
}

// PageErrorPolicy decides what a PageStructureError does to the loop.
type PageErrorPolicy string

const (
	PageErrorsFatal PageErrorPolicy = "fatal"
	PageErrorsSkip  PageErrorPolicy = "skip"
)

// ParsePageErrorPolicy validates a policy name. Empty means fatal.
func ParsePageErrorPolicy(s string) (PageErrorPolicy, error) {
	switch PageErrorPolicy(s) {
	case "", PageErrorsFatal:
		return PageErrorsFatal, nil
	case PageErrorsSkip:
		return PageErrorsSkip, nil
	}
	return "", fmt.Errorf("slotwatch: unknown page error policy %q (want fatal or skip)", s)
}

// Options tunes a Checker. The zero value polls every DefaultInterval
// forever, logs findings and stops at the first page error.
type Options struct {
	Interval   time.Duration
	MaxCycles  int // 0 = unlimited
	PageErrors PageErrorPolicy

	Notifier notify.Notifier
	Journal  *journal.Journal
	Status   *Status
	Logger   *slog.Logger

	// Sleep waits d or until ctx is done. Default: a timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now is the clock. Default: time.Now.
	Now func() time.Time
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.PageErrors == "" {
		o.PageErrors = PageErrorsFatal
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Notifier == nil {
		o.Notifier = notify.NewLog(o.Logger)
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result is what Run returns when a slot was found.
type Result struct {
	Finding notify.Finding
	Cycles  int
	// NotifyErr is the first notifier failure. The slot was still found.
	NotifyErr error
}

// Checker runs the poll loop for one profile on one browser.
type Checker struct {
	cfg    *CheckConfig
	br     Browser
	opts   Options
	logger *slog.Logger
}

// NewChecker creates a Checker.
func NewChecker(cfg *CheckConfig, br Browser, opts Options) *Checker {
	opts.defaults()
	return &Checker{
		cfg:    cfg,
		br:     br,
		opts:   opts,
		logger: opts.Logger.With("profile", cfg.Name),
	}
}

// Run polls until a slot is found, a fatal error occurs, ctx is cancelled
// or MaxCycles is reached.
func (c *Checker) Run(ctx context.Context) (*Result, error) {
	c.logger.Info("slotwatch: starting",
		"url", c.cfg.URL, "interval", c.opts.Interval,
		"selections", config.Label(c.cfg.Selections), "combinations", len(c.cfg.Combinations()))

	for seq := 1; ; seq++ {
		started := c.opts.Now()
		matches, err := c.Check(ctx)
		elapsed := c.opts.Now().Sub(started)

		outcome, detail := classifyOutcome(ctx, matches, err)
		c.record(ctx, seq, started, elapsed, outcome, detail, err)

		switch outcome {
		case journal.Available:
			f := notify.Finding{
				Profile: c.cfg.Name,
				URL:     c.cfg.URL,
				Cycle:   seq,
				At:      started,
				Matches: matches,
			}
			res := &Result{Finding: f, Cycles: seq}
			if err := c.opts.Notifier.Notify(ctx, f); err != nil {
				c.logger.Error("slotwatch: notification failed", "error", err)
				res.NotifyErr = err
			}
			c.logger.Info("slotwatch: slot found", "cycle", seq, "matches", len(matches))
			return res, nil
		case journal.Cancelled:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		case journal.ConfigError:
			return nil, err
		case journal.PageError:
			if c.opts.PageErrors != PageErrorsSkip {
				return nil, err
			}
			c.logger.Warn("slotwatch: page error, skipping cycle", "cycle", seq, "error", err)
		case journal.Unavailable:
			c.logger.Info("slotwatch: no slot", "cycle", seq, "duration", elapsed)
		default: // journal.Failed
			return nil, err
		}

		if c.opts.MaxCycles > 0 && seq >= c.opts.MaxCycles {
			return nil, fmt.Errorf("%w after %d cycles", ErrNoSlot, seq)
		}
		c.logger.Debug("slotwatch: sleeping", "interval", c.opts.Interval)
		if err := c.opts.Sleep(ctx, c.opts.Interval); err != nil {
			return nil, err
		}
	}
}

// Check runs one cycle and returns the available selection sets. An empty
// result with a nil error means no slot.
func (c *Checker) Check(ctx context.Context) ([]notify.Match, error) {
	if err := c.br.Navigate(ctx, c.cfg.URL); err != nil {
		return nil, err
	}
	if err := c.passGate(ctx); err != nil {
		return nil, err
	}
	if err := c.apply(ctx, c.cfg.Selections); err != nil {
		return nil, err
	}

	var matches []notify.Match
	for _, combo := range c.cfg.Combinations() {
		if err := c.apply(ctx, combo); err != nil {
			return nil, err
		}
		r, err := c.br.ReadState(ctx)
		if err != nil {
			return nil, err
		}
		label := config.Label(combo)
		c.logger.Debug("slotwatch: state read", "combination", label, "state", r.State, "text", r.Text)
		if r.State == Available {
			matches = append(matches, notify.Match{Label: label, Text: r.Text, HTML: r.HTML})
		}
	}
	return matches, nil
}

func (c *Checker) passGate(ctx context.Context) error {
	g := c.cfg.Gate
	if len(g.ClickIfVisible) == 0 && g.Await == "" {
		return nil
	}
	gater, ok := c.br.(Gater)
	if !ok {
		c.logger.Warn("slotwatch: browser cannot pass gates, skipping")
		return nil
	}
	for _, sel := range g.ClickIfVisible {
		if err := gater.ClickIfVisible(ctx, sel); err != nil {
			return err
		}
	}
	if g.Await != "" {
		c.logger.Info("slotwatch: waiting for gate", "selector", g.Await, "timeout", g.Timeout)
		return gater.Await(ctx, g.Await, g.Timeout)
	}
	return nil
}

// apply selects each option in order. A ConfigError raised by the driver
// is completed with the profile and the configured field name.
func (c *Checker) apply(ctx context.Context, sels []Selection) error {
	for _, s := range sels {
		sel := s.Selector
		if sel == "" {
			sel = config.SelectorFor(s.Field, nil)
		}
		if err := c.br.SelectOption(ctx, sel, s.Text); err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				ce.Profile = c.cfg.Name
				ce.Field = s.Field
			}
			return err
		}
	}
	return nil
}

func (c *Checker) record(ctx context.Context, seq int, started time.Time, d time.Duration, o journal.Outcome, detail string, err error) {
	if c.opts.Journal != nil {
		// The run context may already be cancelled; the last row still counts.
		c.opts.Journal.Log(context.WithoutCancel(ctx), journal.Cycle{
			Profile:   c.cfg.Name,
			Seq:       seq,
			StartedAt: started,
			Duration:  d,
			Outcome:   o,
			Detail:    detail,
		})
	}
	if c.opts.Status != nil {
		c.opts.Status.update(seq, o, err, started)
	}
}

// classifyOutcome maps a cycle result to its journal outcome.
func classifyOutcome(ctx context.Context, matches []notify.Match, err error) (journal.Outcome, string) {
	if err == nil {
		if len(matches) > 0 {
			return journal.Available, matches[0].Text
		}
		return journal.Unavailable, ""
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return journal.Cancelled, err.Error()
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return journal.ConfigError, err.Error()
	}
	var pe *PageStructureError
	if errors.As(err, &pe) {
		return journal.PageError, err.Error()
	}
	return journal.Failed, err.Error()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
