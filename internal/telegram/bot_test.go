package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"placepilot/internal/conversation"
)

func TestEventFromUpdate(t *testing.T) {
	chat := &tgbotapi.Chat{ID: 42}

	t.Run("plain text", func(t *testing.T) {
		ev, ok := eventFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{Chat: chat, Text: "pizza"}})
		if !ok || ev.ChatID != 42 || ev.Text != "pizza" || ev.Command != "" {
			t.Errorf("got %+v, %v", ev, ok)
		}
	})

	t.Run("command", func(t *testing.T) {
		msg := &tgbotapi.Message{
			Chat: chat, Text: "/start now",
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
		}
		ev, ok := eventFromUpdate(tgbotapi.Update{Message: msg})
		if !ok || ev.Command != "start" || ev.Text != "now" {
			t.Errorf("got %+v, %v", ev, ok)
		}
	})

	t.Run("location", func(t *testing.T) {
		msg := &tgbotapi.Message{Chat: chat, Location: &tgbotapi.Location{Latitude: 40, Longitude: -74}}
		ev, ok := eventFromUpdate(tgbotapi.Update{Message: msg})
		if !ok || ev.Location == nil || ev.Location.Latitude != 40 {
			t.Errorf("got %+v, %v", ev, ok)
		}
	})

	t.Run("largest photo wins", func(t *testing.T) {
		msg := &tgbotapi.Message{Chat: chat, Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "large", Width: 800},
		}}
		ev, ok := eventFromUpdate(tgbotapi.Update{Message: msg})
		if !ok || ev.PhotoID != "large" {
			t.Errorf("got %+v, %v", ev, ok)
		}
	})

	t.Run("callback", func(t *testing.T) {
		upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			Data:    "confirm_yes",
			Message: &tgbotapi.Message{Chat: chat},
		}}
		ev, ok := eventFromUpdate(upd)
		if !ok || ev.Callback != "confirm_yes" || ev.ChatID != 42 {
			t.Errorf("got %+v, %v", ev, ok)
		}
	})

	t.Run("unsupported update dropped", func(t *testing.T) {
		if _, ok := eventFromUpdate(tgbotapi.Update{}); ok {
			t.Error("empty update should not produce an event")
		}
	})
}

func TestReplyMarkup(t *testing.T) {
	if replyMarkup(conversation.Message{Text: "hi"}) != nil {
		t.Error("plain message should have no markup")
	}

	markup := replyMarkup(conversation.Message{RequestLocation: true, Keyboard: []string{"Search"}})
	kb, ok := markup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("got %T", markup)
	}
	if len(kb.Keyboard) != 2 || !kb.OneTimeKeyboard {
		t.Errorf("keyboard = %+v", kb)
	}
	if loc := kb.Keyboard[0][0]; !loc.RequestLocation {
		t.Errorf("first button should request location: %+v", loc)
	}

	markup = replyMarkup(conversation.Message{Inline: []conversation.Button{{Label: "Submit", Data: "confirm_yes"}}})
	inline, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("got %T", markup)
	}
	if *inline.InlineKeyboard[0][0].CallbackData != "confirm_yes" {
		t.Errorf("inline = %+v", inline)
	}

	if _, ok := replyMarkup(conversation.Message{RemoveKeyboard: true}).(tgbotapi.ReplyKeyboardRemove); !ok {
		t.Error("remove keyboard markup missing")
	}
}
