package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/hazyhaar/slotwatch/slotwatch/internal/config"
)

// sendFunc delivers a message. Replaced in tests.
type sendFunc func(m *email.Email, addr string, a smtp.Auth) error

func smtpSend(m *email.Email, addr string, a smtp.Auth) error { return m.Send(addr, a) }

// Email sends the finding through an SMTP relay.
type Email struct {
	cfg  config.EmailConfig
	send sendFunc
}

// NewEmail creates an Email notifier.
func NewEmail(cfg config.EmailConfig) (*Email, error) {
	if cfg.Server == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("email: server, from and to are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Email{cfg: cfg, send: smtpSend}, nil
}

func (e *Email) Name() string { return "email" }

// Message builds the e-mail for a finding.
func (e *Email) Message(f Finding) *email.Email {
	m := email.NewEmail()
	m.From = fmt.Sprintf("slotwatch <%s>", e.cfg.From)
	m.To = append([]string(nil), e.cfg.To...)
	m.Subject = Subject(f)
	m.Text = []byte(Render(f))
	return m
}

// Notify sends with PLAIN auth when a password is set. Relays that do not
// offer AUTH get a second, unauthenticated attempt.
func (e *Email) Notify(ctx context.Context, f Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := e.Message(f)
	addr := fmt.Sprintf("%s:%d", e.cfg.Server, e.cfg.Port)

	var auth smtp.Auth
	if e.cfg.Password != "" {
		auth = smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.Server)
	}
	err := e.send(m, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = e.send(m, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}
