package conversation

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
)

// actionReply is the short acknowledgement shown on the pressed button.
type actionReply struct {
	text  string
	alert bool
}

// handleAction answers every action exactly once, whatever the handler did.
func (e *Engine) handleAction(ctx context.Context, ev Event) error {
	ctx = e.deps.Logger.WithField(ctx, "action", ev.Action)
	reply, err := e.dispatchAction(ctx, ev)
	if ev.ActionID != "" {
		if aerr := e.deps.Messenger.AnswerAction(ctx, ev.ActionID, reply.text, reply.alert); aerr != nil {
			e.deps.Logger.Debug(e.deps.Logger.WithField(ctx, "error", aerr.Error()), "answer action failed")
		}
	}
	return err
}

func (e *Engine) dispatchAction(ctx context.Context, ev Event) (actionReply, error) {
	token := ev.Action
	switch token {
	case ActionBrowse:
		return actionReply{}, e.browse(ctx, ev)
	case ActionHelp:
		return actionReply{}, e.help(ctx, ev)
	case ActionCartView:
		return actionReply{}, e.showCart(ctx, ev)
	case ActionCartRemoveTop:
		if err := e.deps.Carts.RemoveAt(ctx, ev.SessionID, 0); err != nil {
			return actionReply{}, err
		}
		return actionReply{}, e.showCart(ctx, ev)
	case ActionCartEmpty:
		if err := e.deps.Carts.Clear(ctx, ev.SessionID); err != nil {
			return actionReply{}, err
		}
		return actionReply{}, e.showCart(ctx, ev)
	case ActionCheckoutStart:
		return actionReply{}, e.startCheckout(ctx, ev)
	case ActionAskPhoto:
		return actionReply{}, e.askPhoto(ctx, ev)
	}

	switch {
	case strings.HasPrefix(token, prefixCategory):
		category, offset := parseCategoryAction(strings.TrimPrefix(token, prefixCategory))
		return e.listCategory(ctx, ev, category, offset)
	case strings.HasPrefix(token, prefixAdd):
		pid, ok := parseProductID(strings.TrimPrefix(token, prefixAdd))
		if !ok {
			return actionReply{text: textProductMissing, alert: true}, nil
		}
		return e.addProduct(ctx, ev, pid)
	case strings.HasPrefix(token, prefixColors):
		pid, ok := parseProductID(strings.TrimPrefix(token, prefixColors))
		if !ok {
			return actionReply{text: textNoColors, alert: true}, nil
		}
		return e.listColors(ctx, ev, pid)
	case strings.HasPrefix(token, prefixColor):
		pid, color, ok := parseColorAction(strings.TrimPrefix(token, prefixColor))
		if !ok {
			return actionReply{text: textProductMissing, alert: true}, nil
		}
		return e.chooseColor(ctx, ev, pid, color)
	case strings.HasPrefix(token, prefixConfirmColor):
		pid, color, ok := parseColorAction(strings.TrimPrefix(token, prefixConfirmColor))
		if !ok {
			return actionReply{text: textProductMissing, alert: true}, nil
		}
		return e.confirmColor(ctx, ev, pid, color)
	case strings.HasPrefix(token, prefixPayPalHowTo):
		orderID := strings.TrimPrefix(token, prefixPayPalHowTo)
		if orderID == "" {
			orderID = "?"
		}
		return actionReply{}, e.send(ctx, ev, Message{Text: payPalHowTo(orderID), Markdown: true})
	}

	e.deps.Logger.Warn(ctx, "unknown action ignored")
	return actionReply{}, nil
}

func parseCategoryAction(rest string) (string, int) {
	idx := strings.LastIndex(rest, ":")
	if idx < 0 {
		return unescape(rest), 0
	}
	offset, err := strconv.Atoi(rest[idx+1:])
	if err != nil || offset < 0 {
		offset = 0
	}
	return unescape(rest[:idx]), offset
}

func parseProductID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseColorAction(rest string) (int64, string, bool) {
	rawID, enc, found := strings.Cut(rest, ":")
	if !found {
		return 0, "", false
	}
	id, ok := parseProductID(rawID)
	if !ok {
		return 0, "", false
	}
	return id, unescape(enc), true
}

func unescape(v string) string {
	out, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return out
}

// productReply maps catalog lookup failures to a button acknowledgement.
func (e *Engine) productReply(ctx context.Context, err error) (actionReply, error) {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNotFound:
		return actionReply{text: textProductMissing, alert: true}, nil
	case pkgerrors.CodeDependency:
		return actionReply{text: textCatalogDown, alert: true}, nil
	}
	return actionReply{}, err
}
