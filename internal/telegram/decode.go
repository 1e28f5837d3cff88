package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/atelier-bot/internal/conversation"
)

// Decode maps an update onto a conversation event. Updates the bot does not react to,
// including messages relayed via inline bots, report false.
func Decode(u tgbotapi.Update) (conversation.Event, bool) {
	ev := conversation.Event{UpdateID: u.UpdateID}

	if cb := u.CallbackQuery; cb != nil {
		if cb.From == nil {
			return ev, false
		}
		ev.Kind = conversation.KindAction
		ev.User = user(cb.From)
		ev.SessionID = cb.From.ID
		ev.ChatID = cb.From.ID
		ev.Action = cb.Data
		ev.ActionID = cb.ID
		if m := cb.Message; m != nil {
			if m.Chat != nil {
				ev.ChatID = m.Chat.ID
			}
			ev.MessageID = m.MessageID
			ev.MessageHasMedia = hasMedia(m)
		}
		return ev, true
	}

	m := u.Message
	if m == nil || m.From == nil || m.ViaBot != nil {
		return ev, false
	}
	ev.User = user(m.From)
	ev.SessionID = m.From.ID
	ev.ChatID = m.From.ID
	if m.Chat != nil {
		ev.ChatID = m.Chat.ID
	}

	switch {
	case m.IsCommand():
		ev.Kind = conversation.KindCommand
		ev.Command = strings.ToLower(m.Command())
		ev.Text = strings.TrimSpace(m.CommandArguments())
	case m.Contact != nil:
		ev.Kind = conversation.KindContact
		ev.Phone = m.Contact.PhoneNumber
	case len(m.Photo) > 0:
		ev.Kind = conversation.KindPhoto
		ev.Photo = m.Photo[len(m.Photo)-1].FileID
		ev.Text = m.Caption
	case m.Text != "":
		ev.Kind = conversation.KindText
		ev.Text = m.Text
	default:
		return ev, false
	}
	return ev, true
}

func user(u *tgbotapi.User) conversation.User {
	return conversation.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}

func hasMedia(m *tgbotapi.Message) bool {
	return len(m.Photo) > 0 || m.Video != nil || m.Animation != nil || m.Document != nil
}
