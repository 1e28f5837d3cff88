// Package conversation routes inbound session events to the cart, catalog and checkout
// services and renders the replies.
package conversation

import (
	"context"
	"fmt"

	"github.com/angelmondragon/atelier-bot/internal/cart"
	"github.com/angelmondragon/atelier-bot/internal/catalog"
	"github.com/angelmondragon/atelier-bot/internal/checkout"
	"github.com/angelmondragon/atelier-bot/internal/orders"
	"github.com/angelmondragon/atelier-bot/internal/session"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

// DefaultPageSize is how many products a listing fetches; one is displayed at a time.
const DefaultPageSize = 4

// Catalog is the read side of the product catalog.
type Catalog interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListProducts(ctx context.Context, category string, offset, limit int) (catalog.Page, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
}

// Finalizer turns a completed checkout into an order.
type Finalizer interface {
	Finalize(ctx context.Context, sessionID int64, customer orders.Customer) (orders.Receipt, error)
}

// OperatorNotifier reaches the configured operators.
type OperatorNotifier interface {
	NotifyText(ctx context.Context, text string) int
	IsOperator(id int64) bool
}

// Recorder observes inbound traffic.
type Recorder interface {
	IncUpdate(kind string)
	IncDuplicate()
}

// Pending is a product waiting for the user to type a size.
type Pending struct {
	ProductID int64  `json:"pid"`
	Color     string `json:"color,omitempty"`
}

// Options tune the engine.
type Options struct {
	PageSize int
	// CancelCheckoutOnBrowse discards a checkout in progress when the user goes back to the catalog.
	CancelCheckoutOnBrowse bool
	SupportURL             string
	AdminUsername          string
	Operators              []int64
}

// Deps wires the engine collaborators. Deduper, Locker and Metrics are optional.
type Deps struct {
	Catalog   Catalog
	Carts     cart.Service
	Checkouts checkout.Machine
	Pending   session.Store[Pending]
	Finalizer Finalizer
	Operators OperatorNotifier
	Messenger Messenger
	Locker    *session.Locker
	Deduper   Deduper
	Logger    *logger.Logger
	Metrics   Recorder
}

// Engine handles one inbound event at a time per session.
type Engine struct {
	deps Deps
	opts Options
}

// NewEngine validates the dependencies.
func NewEngine(deps Deps, opts Options) (*Engine, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.Checkouts == nil {
		return nil, fmt.Errorf("checkout machine required")
	}
	if deps.Pending == nil {
		return nil, fmt.Errorf("pending selection store required")
	}
	if deps.Finalizer == nil {
		return nil, fmt.Errorf("finalizer required")
	}
	if deps.Operators == nil {
		return nil, fmt.Errorf("operator notifier required")
	}
	if deps.Messenger == nil {
		return nil, fmt.Errorf("messenger required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Locker == nil {
		deps.Locker = session.NewLocker()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Engine{deps: deps, opts: opts}, nil
}

// Handle processes one event to completion. Events of the same session are serialised.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	ctx = e.deps.Logger.WithUpdateID(e.deps.Logger.WithSessionID(ctx, ev.SessionID), ev.UpdateID)
	if e.deps.Metrics != nil {
		e.deps.Metrics.IncUpdate(ev.Kind.String())
	}

	if e.deps.Deduper != nil && ev.UpdateID != 0 {
		seen, err := e.deps.Deduper.Seen(ctx, ev.UpdateID)
		if err != nil {
			e.deps.Logger.Error(ctx, "update de-duplication unavailable", err)
		} else if seen {
			if e.deps.Metrics != nil {
				e.deps.Metrics.IncDuplicate()
			}
			e.deps.Logger.Info(ctx, "duplicate update dropped")
			return nil
		}
	}

	unlock := e.deps.Locker.Lock(ev.SessionID)
	defer unlock()

	switch ev.Kind {
	case KindCommand:
		return e.handleCommand(ctx, ev)
	case KindText:
		return e.handleText(ctx, ev)
	case KindContact:
		return e.handleContact(ctx, ev)
	case KindPhoto:
		return e.handlePhoto(ctx, ev)
	case KindAction:
		return e.handleAction(ctx, ev)
	}
	e.deps.Logger.Debug(ctx, "unsupported event ignored")
	return nil
}

func (e *Engine) send(ctx context.Context, ev Event, msg Message) error {
	return e.deps.Messenger.Send(ctx, ev.ChatID, msg)
}

// safeEdit replaces the message that carried the action, falling back to a new message
// when there is nothing to edit or the edit is refused.
func (e *Engine) safeEdit(ctx context.Context, ev Event, msg Message) error {
	if ev.MessageID == 0 {
		return e.send(ctx, ev, msg)
	}
	if err := e.deps.Messenger.Edit(ctx, ev.ChatID, ev.MessageID, ev.MessageHasMedia, msg); err != nil {
		e.deps.Logger.Debug(e.deps.Logger.WithField(ctx, "error", err.Error()), "edit refused, sending new message")
		return e.send(ctx, ev, msg)
	}
	return nil
}

func (e *Engine) categoryMenu(ctx context.Context, ev Event, text string, markdown bool) error {
	cats, err := e.deps.Catalog.ListCategories(ctx)
	if err != nil {
		e.deps.Logger.Error(ctx, "list categories", err)
		cats = nil
	}
	return e.send(ctx, ev, Message{Text: text, Markdown: markdown, Keyboard: e.categoryKeyboard(cats)})
}

func (e *Engine) browse(ctx context.Context, ev Event) error {
	if e.opts.CancelCheckoutOnBrowse {
		if err := e.deps.Checkouts.Cancel(ctx, ev.SessionID); err != nil {
			return err
		}
	}
	return e.categoryMenu(ctx, ev, textChooseCategory, false)
}
