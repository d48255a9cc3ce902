package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/slotwatch/horosafe"
)

// Webhook POSTs the finding as JSON with a bounded number of attempts.
type Webhook struct {
	url      string
	client   *http.Client
	attempts int
	pause    time.Duration
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// WebhookOption configures a Webhook notifier.
type WebhookOption func(*Webhook)

// WithWebhookAttempts sets the total number of attempts. Default: 3.
func WithWebhookAttempts(n int) WebhookOption {
	return func(w *Webhook) {
		if n > 0 {
			w.attempts = n
		}
	}
}

// WithWebhookPause sets the fixed pause between two attempts. Default: 1s.
func WithWebhookPause(d time.Duration) WebhookOption {
	return func(w *Webhook) { w.pause = d }
}

// WithWebhookLogger sets a custom logger.
func WithWebhookLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWebhook creates a Webhook notifier targeting the given URL.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		attempts: 3,
		pause:    time.Second,
		logger:   slog.Default(),
		sleep:    pauseCtx,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Webhook) Name() string { return "webhook" }

type webhookPayload struct {
	Event   string  `json:"event"`
	Finding Finding `json:"finding"`
	Message string  `json:"message"`
}

func (w *Webhook) Notify(ctx context.Context, f Finding) error {
	body, err := json.Marshal(webhookPayload{Event: "slot_available", Finding: f, Message: Render(f)})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < w.attempts; attempt++ {
		if attempt > 0 {
			if err := w.sleep(ctx, w.pause); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			w.logger.Warn("webhook: request failed", "attempt", attempt+1, "error", err)
			continue
		}
		// Drain a bounded amount so the connection can be reused.
		_, _ = horosafe.LimitedReadAll(resp.Body, horosafe.MaxResponseBody)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
		w.logger.Warn("webhook: bad status", "attempt", attempt+1, "status", resp.StatusCode)
	}
	return fmt.Errorf("webhook: %d attempts failed: %w", w.attempts, lastErr)
}

func pauseCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
