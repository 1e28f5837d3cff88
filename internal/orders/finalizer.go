package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/atelier-bot/internal/cart"
	"github.com/angelmondragon/atelier-bot/internal/payments"
	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

// ErrEmptyCart aborts finalization; the checkout is discarded and no order is created.
var ErrEmptyCart = pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")

// Carts is the cart surface the finalizer needs.
type Carts interface {
	Get(ctx context.Context, sessionID int64) (cart.Cart, error)
	Clear(ctx context.Context, sessionID int64) error
}

// Checkouts discards the checkout of a session.
type Checkouts interface {
	Cancel(ctx context.Context, sessionID int64) error
}

// Notifier fans an order out to operators and reports successful deliveries.
type Notifier interface {
	NotifyOrder(ctx context.Context, order Order) int
}

// Recorder observes finalization attempts.
type Recorder interface {
	ObserveOrder(ok bool)
}

// Receipt is what the user is told after a successful finalization.
type Receipt struct {
	Order      Order
	PaymentURL string
	Delivered  int
}

// OperatorsUnreachable reports that no operator received the order.
func (r Receipt) OperatorsUnreachable() bool {
	return r.Delivered == 0
}

// Deps wires the finalizer collaborators. Events and Metrics are optional.
type Deps struct {
	Carts     Carts
	Checkouts Checkouts
	Store     Store
	Payments  payments.LinkBuilder
	Notifier  Notifier
	Events    EventPublisher
	IDs       *IDGenerator
	Now       func() time.Time
	Logger    *logger.Logger
	Metrics   Recorder
}

// Finalizer turns a completed checkout and a non-empty cart into exactly one order.
type Finalizer struct {
	deps Deps
}

func NewFinalizer(deps Deps) (*Finalizer, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("carts required")
	}
	if deps.Checkouts == nil {
		return nil, fmt.Errorf("checkouts required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if deps.Payments == nil {
		return nil, fmt.Errorf("payment link builder required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.IDs == nil {
		deps.IDs = NewIDGenerator(deps.Now)
	}
	return &Finalizer{deps: deps}, nil
}

// Finalize persists the order before notifying anyone. A persistence failure is returned and
// leaves cart and checkout untouched so the user can retry; once persisted, cart and checkout
// are cleared whatever happens to notifications.
func (f *Finalizer) Finalize(ctx context.Context, sessionID int64, customer Customer) (Receipt, error) {
	ctx = f.deps.Logger.WithSessionID(ctx, sessionID)

	c, err := f.deps.Carts.Get(ctx, sessionID)
	if err != nil {
		return Receipt{}, err
	}
	if c.IsEmpty() {
		if err := f.deps.Checkouts.Cancel(ctx, sessionID); err != nil {
			f.deps.Logger.Error(ctx, "discard checkout after empty cart", err)
		}
		return Receipt{}, ErrEmptyCart
	}

	order := Order{
		ID:         f.deps.IDs.Next(),
		CreatedAt:  f.deps.Now(),
		SessionID:  sessionID,
		Name:       customer.Name,
		Phone:      customer.Phone,
		Address:    customer.Address,
		Items:      c.Snapshot(),
		TotalCents: c.Total(),
		Status:     StatusNew,
	}
	ctx = f.deps.Logger.WithOrderID(ctx, order.ID)

	if err := f.deps.Store.Append(ctx, order); err != nil {
		f.observe(false)
		f.deps.Logger.Error(ctx, "persist order failed", err)
		if pkgerrors.As(err) != nil {
			return Receipt{}, err
		}
		return Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	f.observe(true)
	f.deps.Logger.Info(f.deps.Logger.WithField(ctx, "total_cents", order.TotalCents), "order persisted")

	receipt := Receipt{Order: order}
	if link, ok := f.deps.Payments.Link(order.ID, order.TotalCents); ok {
		receipt.PaymentURL = link
	}

	receipt.Delivered = f.deps.Notifier.NotifyOrder(ctx, order)
	if receipt.OperatorsUnreachable() {
		f.deps.Logger.Warn(ctx, "order persisted but no operator was notified")
	}

	if f.deps.Events != nil {
		if err := f.deps.Events.PublishOrderCreated(ctx, order); err != nil {
			f.deps.Logger.Error(ctx, "publish order event failed", err)
		}
	}

	if err := f.deps.Carts.Clear(ctx, sessionID); err != nil {
		f.deps.Logger.Error(ctx, "clear cart after order", err)
	}
	if err := f.deps.Checkouts.Cancel(ctx, sessionID); err != nil {
		f.deps.Logger.Error(ctx, "clear checkout after order", err)
	}
	return receipt, nil
}

func (f *Finalizer) observe(ok bool) {
	if f.deps.Metrics != nil {
		f.deps.Metrics.ObserveOrder(ok)
	}
}
