package conversation

import (
	"context"
	"fmt"
	"strings"
)

func (e *Engine) handleCommand(ctx context.Context, ev Event) error {
	switch strings.ToLower(ev.Command) {
	case "start":
		return e.start(ctx, ev)
	case "catalogue":
		return e.categoryMenu(ctx, ev, textChooseCategory, false)
	case "panier":
		return e.showCart(ctx, ev)
	case "commander":
		return e.startCheckout(ctx, ev)
	case "help":
		return e.help(ctx, ev)
	case "whoami":
		return e.send(ctx, ev, Message{Text: fmt.Sprintf("Ton ID Telegram : `%d`", ev.User.ID), Markdown: true})
	case "debug_admins":
		return e.send(ctx, ev, Message{Text: fmt.Sprintf("ADMINS lus : `%v`", e.opts.Operators), Markdown: true})
	}
	return e.freeText(ctx, ev)
}

func (e *Engine) start(ctx context.Context, ev Event) error {
	if e.deps.Operators.IsOperator(ev.User.ID) {
		if err := e.send(ctx, ev, Message{Text: textOperatorHello}); err != nil {
			e.deps.Logger.Error(ctx, "operator greeting", err)
		}
	}
	return e.categoryMenu(ctx, ev, textWelcome, true)
}

func (e *Engine) help(ctx context.Context, ev Event) error {
	if u := e.supportURL(); u != "" {
		return e.send(ctx, ev, Message{
			Text:     textHelp,
			Markdown: true,
			Keyboard: Keyboard{{{Text: "Ouvrir la conversation", URL: u}}},
		})
	}
	return e.send(ctx, ev, Message{Text: textHelp + textHelpUnset, Markdown: true})
}
