package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/atelier-bot/internal/conversation"
)

func from() *tgbotapi.User {
	return &tgbotapi.User{ID: 77, FirstName: "Jane", LastName: "Doe", UserName: "jane"}
}

func TestDecodeCommand(t *testing.T) {
	text := "/Start@atelier_bot promo"
	ev, ok := Decode(tgbotapi.Update{
		UpdateID: 9,
		Message: &tgbotapi.Message{
			MessageID: 3,
			From:      from(),
			Chat:      &tgbotapi.Chat{ID: 500},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/Start@atelier_bot")}},
		},
	})
	if !ok {
		t.Fatalf("expected command to decode")
	}
	if ev.Kind != conversation.KindCommand || ev.Command != "start" || ev.Text != "promo" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.SessionID != 77 || ev.ChatID != 500 || ev.UpdateID != 9 || ev.User.Username != "jane" {
		t.Fatalf("unexpected identity %+v", ev)
	}
	if ev.MessageID != 0 {
		t.Fatalf("commands are answered with new messages, got message id %d", ev.MessageID)
	}
}

func TestDecodeMessages(t *testing.T) {
	cases := []struct {
		name string
		msg  *tgbotapi.Message
		want conversation.Event
	}{
		{
			name: "text",
			msg:  &tgbotapi.Message{From: from(), Chat: &tgbotapi.Chat{ID: 77}, Text: "Jane Doe"},
			want: conversation.Event{Kind: conversation.KindText, Text: "Jane Doe"},
		},
		{
			name: "contact",
			msg:  &tgbotapi.Message{From: from(), Chat: &tgbotapi.Chat{ID: 77}, Contact: &tgbotapi.Contact{PhoneNumber: "+33612345678"}},
			want: conversation.Event{Kind: conversation.KindContact, Phone: "+33612345678"},
		},
		{
			name: "photo keeps the largest size",
			msg: &tgbotapi.Message{From: from(), Chat: &tgbotapi.Chat{ID: 77}, Caption: "taille 42",
				Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}},
			want: conversation.Event{Kind: conversation.KindPhoto, Photo: "large", Text: "taille 42"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, ok := Decode(tgbotapi.Update{Message: tc.msg})
			if !ok {
				t.Fatalf("expected decode")
			}
			if ev.Kind != tc.want.Kind || ev.Text != tc.want.Text || ev.Phone != tc.want.Phone || ev.Photo != tc.want.Photo {
				t.Fatalf("unexpected event %+v", ev)
			}
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	ev, ok := Decode(tgbotapi.Update{
		UpdateID: 10,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: from(),
			Data: "cat:Sneakers:0",
			Message: &tgbotapi.Message{
				MessageID: 42,
				Chat:      &tgbotapi.Chat{ID: 77},
				Photo:     []tgbotapi.PhotoSize{{FileID: "p"}},
			},
		},
	})
	if !ok {
		t.Fatalf("expected callback to decode")
	}
	if ev.Kind != conversation.KindAction || ev.Action != "cat:Sneakers:0" || ev.ActionID != "cb-1" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.MessageID != 42 || !ev.MessageHasMedia {
		t.Fatalf("expected the carrying photo message, got %+v", ev)
	}
}

func TestDecodeIgnores(t *testing.T) {
	cases := map[string]tgbotapi.Update{
		"empty":         {},
		"via bot":       {Message: &tgbotapi.Message{From: from(), ViaBot: &tgbotapi.User{ID: 1}, Text: "hi"}},
		"no sender":     {Message: &tgbotapi.Message{Text: "hi"}},
		"sticker only":  {Message: &tgbotapi.Message{From: from(), Sticker: &tgbotapi.Sticker{FileID: "s"}}},
		"callback anon": {CallbackQuery: &tgbotapi.CallbackQuery{ID: "x", Data: "browse"}},
	}
	for name, u := range cases {
		t.Run(name, func(t *testing.T) {
			if _, ok := Decode(u); ok {
				t.Fatalf("expected update to be ignored")
			}
		})
	}
}
