package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/likeforge/likebot/internal/commands"
	"github.com/likeforge/likebot/internal/config"
)

// Bot is the Telegram transport: it long-polls for updates, dispatches
// commands, and delivers replies. It implements commands.LinkReplier and the
// fulfillment loop's Deliverer.
type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *commands.Handlers
}

func New(cfg config.TelegramConfig) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	slog.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Bot{api: api}, nil
}

// SetHandlers wires the command handlers. Separate from New because the
// handlers need the Bot as their Replier.
func (b *Bot) SetHandlers(h *commands.Handlers) {
	b.handlers = h
}

// Start long-polls Telegram for updates until ctx is cancelled. Each command
// is handled on its own goroutine so a slow upstream call cannot stall the
// update loop.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	slog.Info("telegram update loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("telegram update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			go b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	req := commands.Request{
		UserID:    msg.From.ID,
		Username:  msg.From.FirstName,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Args:      strings.Fields(msg.CommandArguments()),
	}

	switch msg.Command() {
	case "like":
		b.handlers.Like(ctx, req)
	case "check":
		b.handlers.Check(ctx, req)
	case "addvip":
		b.handlers.AddVIP(ctx, req)
	}
}

// Reply sends a Markdown reply to the given message.
func (b *Bot) Reply(ctx context.Context, chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

// ReplyWithVerifyLink sends the verification prompt with an inline keyboard
// carrying the verify link and the how-to guide.
func (b *Bot) ReplyWithVerifyLink(ctx context.Context, chatID int64, messageID int, text, verifyURL, howToURL string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	msg.ParseMode = tgbotapi.ModeMarkdown

	rows := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonURL("✅ VERIFY", verifyURL)},
	}
	if howToURL != "" {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonURL("❓ How to Verify", howToURL),
		})
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("sending verification prompt: %w", err)
	}
	return nil
}
