package notify

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// StatusFunc renders the current service status for the /status command.
type StatusFunc func(ctx context.Context) string

// Bot is a Telegram bot that posts notifications into the admin chat and answers
// /status there. A nil *Bot is disabled and ignores every call.
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
	status StatusFunc
	logger *zap.Logger
}

// NewBot creates the bot, or returns nil when no token is configured.
func NewBot(token string, chatID int64, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		logger.Info("Telegram notifications are disabled (notify.telegram_token is empty)")
		return nil, nil
	}
	return newBot(token, chatID, http.DefaultClient, logger)
}

func newBot(token string, chatID int64, client tgbotapi.HTTPClient, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}
	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))
	return &Bot{api: botAPI, chatID: chatID, logger: logger}, nil
}

// SetStatusFunc installs the renderer used by /status.
func (b *Bot) SetStatusFunc(fn StatusFunc) {
	if b == nil {
		return
	}
	b.status = fn
}

func (b *Bot) Notify(_ context.Context, text string) error {
	if b == nil {
		return nil
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Start begins listening for commands until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() || message.Chat == nil {
		return
	}
	if message.Chat.ID != b.chatID {
		b.logger.Warn("Ignoring command from foreign chat", zap.Int64("chat_id", message.Chat.ID))
		return
	}
	switch message.Command() {
	case "status":
		text := "Status nicht verfügbar."
		if b.status != nil {
			text = b.status(ctx)
		}
		b.sendMessage(message.Chat.ID, text)
	case "help", "start":
		b.sendMessage(message.Chat.ID, "Befehle:\n/status - Modell- und Korpusstatus\n/help - Diese Hilfe")
	default:
		b.sendMessage(message.Chat.ID, "Unbekannter Befehl. Verwende /help.")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
