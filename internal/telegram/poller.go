package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Poll long-polls getUpdates and dispatches every decodable update until ctx ends.
func (c *Client) Poll(ctx context.Context, timeout time.Duration, d *Dispatcher) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(timeout / time.Second)
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	c.logg.Info(c.logg.WithField(ctx, "bot", c.Username()), "polling for updates")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			d.DispatchUpdate(ctx, update)
		}
	}
}
