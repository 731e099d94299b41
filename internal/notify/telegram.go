package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/budgetpilot/budgetpilot/pkg/config"
)

// Telegram delivers drift alerts as Telegram messages to users who linked a
// chat ID to their account.
type Telegram struct {
	bot *telebot.Bot
	log *slog.Logger
}

// NewTelegram builds the Telegram delivery channel. The bot runs in
// send-only mode; no poller is attached.
func NewTelegram(cfg config.TelegramConfig, log *slog.Logger) (*Telegram, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.BotToken,
		Client: &http.Client{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{bot: bot, log: log}, nil
}

// SendDriftAlert pushes one alert message. Users without a linked chat are
// silently skipped.
func (t *Telegram) SendDriftAlert(ctx context.Context, chatID int64, message string) error {
	if chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.bot.Send(telebot.ChatID(chatID), message); err != nil {
		if t.log != nil {
			t.log.Warn("telegram drift alert failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}
		return fmt.Errorf("send telegram alert: %w", err)
	}

	return nil
}

// HealthCheck reports whether the bot API handshake succeeded.
func (t *Telegram) HealthCheck(context.Context) error {
	if t == nil || t.bot == nil || t.bot.Me == nil {
		return errors.New("telegram bot is not connected")
	}
	return nil
}
