package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hazyhaar/slotwatch/slotwatch/internal/config"
)

// TelegramAPI is the Bot API base URL.
const TelegramAPI = "https://api.telegram.org"

// Telegram sends the rendered finding through a Telegram bot.
type Telegram struct {
	token  string
	chatID string
	client *resty.Client
}

// NewTelegram creates a Telegram notifier. BaseURL overrides the Bot API
// endpoint (tests, self-hosted API servers).
func NewTelegram(cfg config.TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram: token and chat_id are required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = TelegramAPI
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(15 * time.Second)
	return &Telegram{token: cfg.Token, chatID: cfg.ChatID, client: client}, nil
}

func (t *Telegram) Name() string { return "telegram" }

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Notify(ctx context.Context, f Finding) error {
	var out telegramResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"text":    Render(f),
		}).
		SetResult(&out).
		SetError(&out).
		Post("/bot" + t.token + "/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode(), out.Description)
	}
	return nil
}
