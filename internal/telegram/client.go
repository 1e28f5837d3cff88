// Package telegram adapts the Telegram Bot API to the conversation engine: inbound updates
// become events and engine messages become Bot API calls.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/atelier-bot/internal/conversation"
	"github.com/angelmondragon/atelier-bot/pkg/config"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

// Client sends messages through the Bot API.
type Client struct {
	api  *tgbotapi.BotAPI
	logg *logger.Logger
}

// New authenticates the bot token against the Bot API.
func New(cfg config.TelegramConfig, logg *logger.Logger) (*Client, error) {
	return newClient(cfg, tgbotapi.APIEndpoint, &http.Client{}, logg)
}

func newClient(cfg config.TelegramConfig, endpoint string, httpClient tgbotapi.HTTPClient, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, fmt.Errorf("telegram bot token required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram get me: %w", err)
	}
	api.Debug = cfg.Debug
	return &Client{api: api, logg: logg}, nil
}

// Username is the bot's own handle.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

func (c *Client) Send(ctx context.Context, chatID int64, msg conversation.Message) error {
	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	switch {
	case msg.Contact != nil:
		cfg.ReplyMarkup = contactMarkup(msg.Contact)
	case len(msg.Keyboard) > 0:
		cfg.ReplyMarkup = inlineMarkup(msg.Keyboard)
	}
	return c.withPlainRetry(ctx, &cfg.ParseMode, func() error {
		_, err := c.api.Send(cfg)
		return err
	})
}

func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, hasMedia bool, msg conversation.Message) error {
	markup := editMarkup(msg.Keyboard)
	if hasMedia {
		cfg := tgbotapi.NewEditMessageCaption(chatID, messageID, msg.Text)
		cfg.ReplyMarkup = markup
		if msg.Markdown {
			cfg.ParseMode = tgbotapi.ModeMarkdown
		}
		return c.withPlainRetry(ctx, &cfg.ParseMode, func() error {
			_, err := c.api.Request(cfg)
			return err
		})
	}
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, msg.Text)
	cfg.ReplyMarkup = markup
	if msg.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	return c.withPlainRetry(ctx, &cfg.ParseMode, func() error {
		_, err := c.api.Request(cfg)
		return err
	})
}

func (c *Client) EditPhoto(ctx context.Context, chatID int64, messageID int, photo string, msg conversation.Message) error {
	media := tgbotapi.NewInputMediaPhoto(photoFile(photo))
	media.Caption = msg.Text
	if msg.Markdown {
		media.ParseMode = tgbotapi.ModeMarkdown
	}
	cfg := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{ChatID: chatID, MessageID: messageID, ReplyMarkup: editMarkup(msg.Keyboard)},
	}
	return c.withPlainRetry(ctx, &media.ParseMode, func() error {
		cfg.Media = media
		_, err := c.api.Request(cfg)
		return err
	})
}

func (c *Client) EditKeyboard(_ context.Context, chatID int64, messageID int, kb conversation.Keyboard) error {
	_, err := c.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, inlineMarkup(kb)))
	return err
}

func (c *Client) AnswerAction(_ context.Context, actionID, text string, alert bool) error {
	cfg := tgbotapi.NewCallback(actionID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(actionID, text)
	}
	_, err := c.api.Request(cfg)
	return err
}

// SendText delivers a lightly formatted notification.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.Send(ctx, chatID, conversation.Message{Text: text, Markdown: true})
}

// SendPhoto delivers an image by URL or file id with a caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo, caption string) error {
	cfg := tgbotapi.NewPhoto(chatID, photoFile(photo))
	cfg.Caption = caption
	cfg.ParseMode = tgbotapi.ModeMarkdown
	return c.withPlainRetry(ctx, &cfg.ParseMode, func() error {
		_, err := c.api.Send(cfg)
		return err
	})
}

// withPlainRetry resends without formatting when Telegram rejects the markup.
func (c *Client) withPlainRetry(ctx context.Context, parseMode *string, call func() error) error {
	err := call()
	if err == nil || *parseMode == "" || !isEntityError(err) {
		return err
	}
	c.logg.Debug(c.logg.WithField(ctx, "error", err.Error()), "markdown rejected, resending as plain text")
	*parseMode = ""
	return call()
}

func isEntityError(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, "can't parse entities")
	}
	return strings.Contains(err.Error(), "can't parse entities")
}

func photoFile(ref string) tgbotapi.RequestFileData {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tgbotapi.FileURL(ref)
	}
	return tgbotapi.FileID(ref)
}

func inlineMarkup(kb conversation.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Action))
		}
		if len(buttons) > 0 {
			rows = append(rows, buttons)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func editMarkup(kb conversation.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	markup := inlineMarkup(kb)
	return &markup
}

func contactMarkup(req *conversation.ContactRequest) tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(req.Label)),
	)
	markup.ResizeKeyboard = true
	markup.InputFieldPlaceholder = req.Placeholder
	return markup
}
