// README: Telegram transport: updates in, conversation events through, messages out.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"placepilot/internal/conversation"
	"placepilot/internal/logging"
	"placepilot/internal/places"
)

// Handler is the conversation entry point the transport drives.
type Handler interface {
	HandleEvent(ctx context.Context, ev conversation.Event) (conversation.Reply, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler Handler
	log     *slog.Logger
	typing  bool
}

func New(token string, handler Handler, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Bot{api: api, handler: handler, log: log}, nil
}

// WithTyping enables the "typing…" chat action while an update is handled.
func (b *Bot) WithTyping(on bool) *Bot {
	b.typing = on
	return b
}

// Username returns the bot account name, for startup logs.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until ctx is cancelled. Webhook mode bypasses
// this and feeds HandleUpdate directly.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// SetWebhook registers url with Telegram and drops any pending webhook.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook so polling can take over.
func (b *Bot) DeleteWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// HandleUpdate converts one update into a conversation event, runs the
// handler and sends the reply. Errors are logged, never surfaced to
// Telegram as HTTP failures.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	ev, ok := eventFromUpdate(upd)
	if !ok {
		return
	}
	ev.RequestID = logging.NewRequestID()
	log := logging.ForUpdate(b.log, ev.RequestID, ev.ChatID)

	if upd.CallbackQuery != nil {
		// Ack the button press so the client stops its spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(upd.CallbackQuery.ID, "")); err != nil {
			log.Debug("answer callback", "error", err)
		}
	}
	if b.typing {
		if _, err := b.api.Request(tgbotapi.NewChatAction(ev.ChatID, tgbotapi.ChatTyping)); err != nil {
			log.Debug("chat action", "error", err)
		}
	}

	reply, err := b.handler.HandleEvent(ctx, ev)
	if err != nil {
		log.Error("handle event", "error", err)
		b.send(log, ev.ChatID, conversation.Message{Text: "Something went wrong on my side. Please try again."})
		return
	}
	for _, m := range reply.Messages {
		b.send(log, ev.ChatID, m)
	}
}

func eventFromUpdate(upd tgbotapi.Update) (conversation.Event, bool) {
	switch {
	case upd.Message != nil:
		msg := upd.Message
		ev := conversation.Event{ChatID: msg.Chat.ID, Text: msg.Text}
		if msg.IsCommand() {
			ev.Command = msg.Command()
			ev.Text = msg.CommandArguments()
		}
		if msg.Location != nil {
			ev.Location = &places.Location{
				Latitude:  msg.Location.Latitude,
				Longitude: msg.Location.Longitude,
			}
		}
		if len(msg.Photo) > 0 {
			// The last entry is the largest rendition.
			ev.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
		}
		return ev, true
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return conversation.Event{}, false
		}
		return conversation.Event{ChatID: cb.Message.Chat.ID, Callback: cb.Data}, true
	default:
		return conversation.Event{}, false
	}
}

func (b *Bot) send(log *slog.Logger, chatID int64, m conversation.Message) {
	out := tgbotapi.NewMessage(chatID, m.Text)
	if m.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}
	if markup := replyMarkup(m); markup != nil {
		out.ReplyMarkup = markup
	}
	if _, err := b.api.Send(out); err != nil {
		log.Error("send message", "error", err)
	}
}

func replyMarkup(m conversation.Message) interface{} {
	switch {
	case len(m.Inline) > 0:
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(m.Inline))
		for _, btn := range m.Inline {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		return tgbotapi.NewInlineKeyboardMarkup(row)
	case m.RequestLocation || len(m.Keyboard) > 0:
		var rows [][]tgbotapi.KeyboardButton
		if m.RequestLocation {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButtonLocation("📍 Share my location"),
			))
		}
		for _, label := range m.Keyboard {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.OneTimeKeyboard = true
		return kb
	case m.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(true)
	default:
		return nil
	}
}
