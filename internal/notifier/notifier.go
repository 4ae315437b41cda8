package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dyike/MoneyScope/internal/logger"
)

// Report is a generated report ready for delivery.
type Report struct {
	Pair     string
	FileName string
	Content  []byte
}

type Notifier interface {
	Notify(ctx context.Context, r Report) error
}

// Noop drops every report.
type Noop struct{}

func (Noop) Notify(context.Context, Report) error { return nil }

const captionLimit = 1024

type TelegramConfig struct {
	Token       string
	ChatID      int64
	HTTPTimeout time.Duration
	// Endpoint overrides tgbotapi.APIEndpoint; it must keep the two %s verbs.
	Endpoint string
}

// Telegram sends reports as markdown documents to a single chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.Endpoint, &http.Client{Timeout: cfg.HTTPTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Log.Infof("telegram notifier authorized as %s", api.Self.UserName)
	return &Telegram{api: api, chatID: cfg.ChatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FileBytes{Name: r.FileName, Bytes: r.Content})
	doc.Caption = truncate(fmt.Sprintf("MoneyScope report for %s", r.Pair), captionLimit)
	if _, err := t.api.Send(doc); err != nil {
		return fmt.Errorf("send report to telegram: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
