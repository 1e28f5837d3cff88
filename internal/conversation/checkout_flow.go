package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/atelier-bot/internal/checkout"
	"github.com/angelmondragon/atelier-bot/internal/orders"
	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
	"github.com/angelmondragon/atelier-bot/pkg/money"
)

// handleText routes free text: an active checkout first, then a pending size selection,
// then the help reply.
func (e *Engine) handleText(ctx context.Context, ev Event) error {
	c, err := e.deps.Checkouts.Get(ctx, ev.SessionID)
	if err != nil {
		return err
	}
	if c.Active() {
		res, err := e.deps.Checkouts.HandleText(ctx, ev.SessionID, ev.Text)
		if err != nil {
			return err
		}
		return e.renderCheckout(ctx, ev, res)
	}

	pending, ok, err := e.deps.Pending.Get(ctx, ev.SessionID)
	if err != nil {
		return err
	}
	if ok {
		if err := e.deps.Pending.Delete(ctx, ev.SessionID); err != nil {
			return err
		}
		return e.addPending(ctx, ev, pending)
	}
	return e.freeText(ctx, ev)
}

func (e *Engine) handleContact(ctx context.Context, ev Event) error {
	if err := e.deps.Pending.Delete(ctx, ev.SessionID); err != nil {
		return err
	}
	res, err := e.deps.Checkouts.HandleContact(ctx, ev.SessionID, ev.Phone)
	if err != nil {
		return err
	}
	return e.renderCheckout(ctx, ev, res)
}

func (e *Engine) startCheckout(ctx context.Context, ev Event) error {
	if err := e.deps.Pending.Delete(ctx, ev.SessionID); err != nil {
		return err
	}
	res, err := e.deps.Checkouts.Start(ctx, ev.SessionID)
	if err != nil {
		return err
	}
	e.deps.Logger.Info(ctx, "checkout started")
	return e.renderCheckout(ctx, ev, res)
}

func (e *Engine) renderCheckout(ctx context.Context, ev Event, res checkout.Result) error {
	switch res.Outcome {
	case checkout.OutcomePromptName:
		return e.send(ctx, ev, Message{Text: textNamePrompt, Markdown: true, Keyboard: e.backKeyboard()})
	case checkout.OutcomePromptPhone:
		return e.send(ctx, ev, Message{Text: textPhonePrompt, Markdown: true, Contact: phoneRequest()})
	case checkout.OutcomeInvalidPhone:
		return e.send(ctx, ev, Message{Text: textPhoneInvalid, Markdown: true, Contact: phoneRequest()})
	case checkout.OutcomePromptAddress:
		return e.send(ctx, ev, Message{Text: textAddressPrompt, Markdown: true, Keyboard: e.backKeyboard()})
	case checkout.OutcomeReady:
		return e.finalize(ctx, ev, res.Checkout)
	}
	return e.freeText(ctx, ev)
}

func (e *Engine) finalize(ctx context.Context, ev Event, c checkout.Checkout) error {
	receipt, err := e.deps.Finalizer.Finalize(ctx, ev.SessionID, orders.Customer{
		Name:    c.Name,
		Phone:   c.Phone,
		Address: c.Address,
	})
	if errors.Is(err, orders.ErrEmptyCart) {
		return e.send(ctx, ev, Message{Text: textCartEmpty, Keyboard: e.shortBackKeyboard()})
	}
	if err != nil {
		text := textOrderRejected
		if pkgerrors.Retryable(err) {
			text = textOrderFailed
		}
		return e.send(ctx, ev, Message{Text: text, Keyboard: Keyboard{e.supportRow()}})
	}

	if err := e.deps.Pending.Delete(ctx, ev.SessionID); err != nil {
		e.deps.Logger.Error(ctx, "drop pending size after order", err)
	}

	o := receipt.Order
	confirmation := fmt.Sprintf("✅ Commande #%d enregistrée.\n"+
		"Total: *%s*\n\n"+
		"Clique pour *payer via PayPal.me*. "+
		"Si possible, sélectionne *Entre proches* dans l’app et ajoute la note:\n"+
		"`Commande #%d`", o.ID, money.Format(o.TotalCents), o.ID)
	if err := e.send(ctx, ev, Message{Text: confirmation, Markdown: true, Keyboard: e.paymentKeyboard(o.ID, receipt.PaymentURL)}); err != nil {
		return err
	}
	if receipt.OperatorsUnreachable() {
		if err := e.send(ctx, ev, Message{Text: textOperatorsDown, Markdown: true, Keyboard: Keyboard{e.supportRow()}}); err != nil {
			return err
		}
	}
	return e.send(ctx, ev, Message{Text: textThanks, Keyboard: e.backKeyboard()})
}

func (e *Engine) freeText(ctx context.Context, ev Event) error {
	return e.send(ctx, ev, Message{Text: textFreeText, Keyboard: e.backKeyboard()})
}
