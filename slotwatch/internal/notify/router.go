package notify

import (
	"context"
	"log/slog"
)

// Router fans a finding out to all notifiers. One failing notifier does not
// block the others: errors are logged and the first one is returned.
type Router struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewRouter creates a fan-out router delivering to all notifiers.
func NewRouter(logger *slog.Logger, notifiers ...Notifier) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{notifiers: notifiers, logger: logger}
}

func (r *Router) Name() string { return "router" }

// Names lists the routed notifiers in delivery order.
func (r *Router) Names() []string {
	out := make([]string, len(r.notifiers))
	for i, n := range r.notifiers {
		out[i] = n.Name()
	}
	return out
}

func (r *Router) Notify(ctx context.Context, f Finding) error {
	var firstErr error
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, f); err != nil {
			r.logger.Warn("notify: delivery failed", "notifier", n.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
