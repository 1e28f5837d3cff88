package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/atelier-bot/internal/cart"
	"github.com/angelmondragon/atelier-bot/internal/catalog"
	"github.com/angelmondragon/atelier-bot/pkg/money"
)

// listCategory shows the product at offset; "next" wraps around to the first one.
func (e *Engine) listCategory(ctx context.Context, ev Event, category string, offset int) (actionReply, error) {
	page, err := e.deps.Catalog.ListProducts(ctx, category, offset, e.opts.PageSize)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			return actionReply{}, e.safeEdit(ctx, ev, Message{Text: textCatalogDown, Keyboard: e.shortBackKeyboard()})
		}
		return actionReply{}, err
	}
	if len(page.Items) == 0 {
		return actionReply{}, e.safeEdit(ctx, ev, Message{Text: textNoProducts, Keyboard: e.shortBackKeyboard()})
	}

	p := page.Items[0]
	next := offset + 1
	if next >= page.Total {
		next = 0
	}
	msg := Message{
		Text:     productCaption(p),
		Markdown: true,
		Keyboard: Keyboard{
			{{Text: "➕ Ajouter (choisir options)", Action: fmt.Sprintf("%s%d", prefixAdd, p.ID)}},
			{{Text: "Changer d’article", Action: categoryAction(category, next)}},
			{{Text: "📦 Panier", Action: ActionCartView}},
			{{Text: textBackToCatalog, Action: ActionBrowse}},
			e.supportRow(),
		},
	}
	return actionReply{}, e.showWithImage(ctx, ev, catalog.ResolveImage(p, ""), msg)
}

// showWithImage swaps the carrying message to the image when one resolves.
func (e *Engine) showWithImage(ctx context.Context, ev Event, image string, msg Message) error {
	if image != "" && ev.MessageID != 0 {
		err := e.deps.Messenger.EditPhoto(ctx, ev.ChatID, ev.MessageID, image, msg)
		if err == nil {
			return nil
		}
		e.deps.Logger.Debug(e.deps.Logger.WithField(ctx, "error", err.Error()), "photo edit refused")
	}
	return e.safeEdit(ctx, ev, msg)
}

func productCaption(p catalog.Product) string {
	sizes := p.Sizes
	if sizes == "" {
		sizes = "-"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\nCatégorie: %s\nPrix: %s\nTailles: %s", p.Name, p.Category, money.Format(p.PriceCents), sizes)
	if p.HasColors() {
		b.WriteString("\nColoris: " + strings.Join(p.Colors, ", "))
	}
	return b.String()
}

func (e *Engine) addProduct(ctx context.Context, ev Event, pid int64) (actionReply, error) {
	p, err := e.deps.Catalog.GetProduct(ctx, pid)
	if err != nil {
		return e.productReply(ctx, err)
	}
	if !p.HasColors() {
		return actionReply{}, e.promptSize(ctx, ev, Pending{ProductID: pid})
	}
	kb := e.colorsKeyboard(pid, p.Colors)
	if ev.MessageID == 0 || e.deps.Messenger.EditKeyboard(ctx, ev.ChatID, ev.MessageID, kb) != nil {
		if err := e.send(ctx, ev, Message{Text: "Choisis un coloris :", Keyboard: kb}); err != nil {
			return actionReply{}, err
		}
	}
	return actionReply{text: "Choisis un coloris"}, nil
}

func (e *Engine) listColors(ctx context.Context, ev Event, pid int64) (actionReply, error) {
	p, err := e.deps.Catalog.GetProduct(ctx, pid)
	if err != nil || !p.HasColors() {
		if err != nil && !errors.Is(err, catalog.ErrProductNotFound) {
			return e.productReply(ctx, err)
		}
		return actionReply{text: textNoColors, alert: true}, nil
	}
	kb := e.colorsKeyboard(pid, p.Colors)
	if ev.MessageID == 0 || e.deps.Messenger.EditKeyboard(ctx, ev.ChatID, ev.MessageID, kb) != nil {
		return actionReply{}, e.send(ctx, ev, Message{Text: "Choisis un coloris :", Keyboard: kb})
	}
	return actionReply{}, nil
}

func (e *Engine) chooseColor(ctx context.Context, ev Event, pid int64, color string) (actionReply, error) {
	p, err := e.deps.Catalog.GetProduct(ctx, pid)
	if err != nil {
		return e.productReply(ctx, err)
	}
	msg := Message{
		Text: fmt.Sprintf("*%s*\nCouleur choisie: *%s*\nPrix: %s\n\nValider ce coloris ?",
			p.Name, color, money.Format(p.PriceCents)),
		Markdown: true,
		Keyboard: Keyboard{
			{{Text: "✅ Valider ce coloris", Action: colorAction(prefixConfirmColor, pid, color)}},
			{{Text: "↩️ Choisir un autre coloris", Action: fmt.Sprintf("%s%d", prefixColors, pid)}},
			{{Text: textBackToCatalog, Action: ActionBrowse}},
			e.supportRow(),
		},
	}
	return actionReply{}, e.showWithImage(ctx, ev, catalog.ResolveImage(p, color), msg)
}

func (e *Engine) confirmColor(ctx context.Context, ev Event, pid int64, color string) (actionReply, error) {
	if _, err := e.deps.Catalog.GetProduct(ctx, pid); err != nil {
		return e.productReply(ctx, err)
	}
	return actionReply{}, e.promptSize(ctx, ev, Pending{ProductID: pid, Color: color})
}

// promptSize waits for a typed size. Size entry and checkout both consume free text, so adds are
// refused while a checkout is collecting details.
func (e *Engine) promptSize(ctx context.Context, ev Event, p Pending) error {
	c, err := e.deps.Checkouts.Get(ctx, ev.SessionID)
	if err != nil {
		return err
	}
	if c.Active() {
		return e.send(ctx, ev, Message{Text: textCheckoutBusy, Keyboard: Keyboard{e.supportRow()}})
	}
	if err := e.deps.Pending.Put(ctx, ev.SessionID, p); err != nil {
		return err
	}
	if err := e.send(ctx, ev, Message{Text: textSizePrompt, Markdown: true}); err != nil {
		return err
	}
	return e.send(ctx, ev, Message{Text: textOrBack, Keyboard: e.backKeyboard()})
}

// addPending completes a size selection with the typed size.
func (e *Engine) addPending(ctx context.Context, ev Event, pending Pending) error {
	size := strings.TrimSpace(ev.Text)
	if size == "" {
		return e.promptSize(ctx, ev, pending)
	}
	p, err := e.deps.Catalog.GetProduct(ctx, pending.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return e.send(ctx, ev, Message{Text: textProductMissing + "."})
		}
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			return e.send(ctx, ev, Message{Text: textCatalogDown})
		}
		return err
	}
	item := cart.Item{
		ProductID:  p.ID,
		Name:       p.Name,
		Color:      pending.Color,
		Size:       size,
		Qty:        1,
		PriceCents: p.PriceCents,
	}
	if err := e.deps.Carts.Add(ctx, ev.SessionID, item); err != nil {
		return err
	}
	e.deps.Logger.Info(e.deps.Logger.WithField(ctx, "product_id", p.ID), "item added to cart")

	added := "Ajouté ✅ " + p.Name + " • "
	if pending.Color != "" {
		added += pending.Color + " • "
	}
	added += "Taille " + size
	if err := e.send(ctx, ev, Message{Text: added}); err != nil {
		return err
	}
	return e.send(ctx, ev, Message{Text: textWhatNext, Keyboard: e.postAddKeyboard()})
}

func (e *Engine) showCart(ctx context.Context, ev Event) error {
	c, err := e.deps.Carts.Get(ctx, ev.SessionID)
	if err != nil {
		return err
	}
	if c.IsEmpty() {
		return e.safeEdit(ctx, ev, Message{Text: textCartEmpty + "\n\nRetour au catalogue :", Keyboard: e.shortBackKeyboard()})
	}
	return e.safeEdit(ctx, ev, Message{
		Text:     cartSummary(c),
		Markdown: true,
		Keyboard: Keyboard{
			{{Text: "➖ Retirer le 1er", Action: ActionCartRemoveTop}, {Text: "🗑 Vider", Action: ActionCartEmpty}},
			{{Text: "➕ Continuer les achats", Action: ActionBrowse}, {Text: "✅ Commander", Action: ActionCheckoutStart}},
			e.supportRow(),
		},
	})
}

func cartSummary(c cart.Cart) string {
	lines := []string{"🧺 *Ton panier:*"}
	for i, it := range c.Items {
		color := ""
		if it.Color != "" {
			color = " • " + it.Color
		}
		lines = append(lines, fmt.Sprintf("%d. %s%s • T.%s x%d - %s", i+1, it.Name, color, it.Size, it.Qty, money.Format(it.LineTotal())))
	}
	lines = append(lines, "\nTotal: *"+money.Format(c.Total())+"*")
	return strings.Join(lines, "\n")
}

func (e *Engine) askPhoto(ctx context.Context, ev Event) error {
	if err := e.send(ctx, ev, Message{Text: textAskPhoto, Markdown: true, Keyboard: e.shareKeyboard(ev.User)}); err != nil {
		return err
	}
	n := e.deps.Operators.NotifyText(ctx, fmt.Sprintf("🔔 %s souhaite envoyer *un modèle en MP* (photo + taille).", ev.User.Display()))
	e.deps.Logger.Debug(e.deps.Logger.WithField(ctx, "delivered", n), "operators told about a model request")
	return nil
}

func (e *Engine) handlePhoto(ctx context.Context, ev Event) error {
	return e.send(ctx, ev, Message{Text: textPhotoThanks, Markdown: true, Keyboard: e.shareKeyboard(ev.User)})
}
