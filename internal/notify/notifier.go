// Package notify fans finalized orders and customer requests out to operators.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/atelier-bot/internal/cart"
	"github.com/angelmondragon/atelier-bot/internal/orders"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
	"github.com/angelmondragon/atelier-bot/pkg/money"
	"go.uber.org/multierr"
)

// Sender delivers messages to one chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photo, caption string) error
}

// ImageResolver finds the image for an ordered product variant.
type ImageResolver interface {
	ResolveImage(ctx context.Context, productID int64, color string) string
}

// DeliveryRecorder observes fan-out outcomes.
type DeliveryRecorder interface {
	AddDeliveries(succeeded, failed int)
}

// Notifier sends to every configured operator. Failures are logged and counted, never returned.
type Notifier struct {
	sender    Sender
	operators []int64
	images    ImageResolver
	logg      *logger.Logger
	metrics   DeliveryRecorder
}

// NewNotifier wires the transport. images and metrics may be nil.
func NewNotifier(sender Sender, operators []int64, images ImageResolver, logg *logger.Logger, metrics DeliveryRecorder) (*Notifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	ops := make([]int64, len(operators))
	copy(ops, operators)
	return &Notifier{sender: sender, operators: ops, images: images, logg: logg, metrics: metrics}, nil
}

// IsOperator reports whether id is a configured operator.
func (n *Notifier) IsOperator(id int64) bool {
	for _, op := range n.operators {
		if op == id {
			return true
		}
	}
	return false
}

// NotifyOrder sends the order header then one message per line item to each operator.
// It returns the number of successful deliveries.
func (n *Notifier) NotifyOrder(ctx context.Context, order orders.Order) int {
	t := &tally{}
	n.broadcastText(ctx, t, OrderHeader(order))
	for _, item := range order.Items {
		caption := ItemCaption(item)
		img := ""
		if n.images != nil {
			img = n.images.ResolveImage(ctx, item.ProductID, item.Color)
		}
		if img == "" {
			n.broadcastText(ctx, t, caption)
			continue
		}
		n.broadcastPhoto(ctx, t, img, caption)
	}
	n.finish(ctx, t, "order notification")
	return t.ok
}

// NotifyText sends one plain message to every operator and returns the number delivered.
func (n *Notifier) NotifyText(ctx context.Context, text string) int {
	t := &tally{}
	n.broadcastText(ctx, t, text)
	n.finish(ctx, t, "operator text notification")
	return t.ok
}

type tally struct {
	ok     int
	failed int
	errs   error
}

func (n *Notifier) broadcastText(ctx context.Context, t *tally, text string) {
	for _, op := range n.operators {
		if err := n.sender.SendText(ctx, op, text); err != nil {
			t.fail(fmt.Errorf("text to operator %d: %w", op, err))
			continue
		}
		t.ok++
	}
}

// broadcastPhoto tries photo+caption per operator and degrades to text with the raw image reference.
func (n *Notifier) broadcastPhoto(ctx context.Context, t *tally, photo, caption string) {
	for _, op := range n.operators {
		err := n.sender.SendPhoto(ctx, op, photo, caption)
		if err == nil {
			t.ok++
			continue
		}
		n.logg.Warn(n.logg.WithOperatorID(ctx, op), "photo delivery failed, falling back to text: "+err.Error())
		if err := n.sender.SendText(ctx, op, caption+"\n(photo: "+photo+")"); err != nil {
			t.fail(fmt.Errorf("fallback to operator %d: %w", op, err))
			continue
		}
		t.ok++
	}
}

func (t *tally) fail(err error) {
	t.failed++
	t.errs = multierr.Append(t.errs, err)
}

func (n *Notifier) finish(ctx context.Context, t *tally, what string) {
	if n.metrics != nil {
		n.metrics.AddDeliveries(t.ok, t.failed)
	}
	fields := map[string]any{"delivered": t.ok, "failed": t.failed, "operators": len(n.operators)}
	ctx = n.logg.WithFields(ctx, fields)
	if t.errs != nil {
		n.logg.Error(ctx, what+" partially failed", t.errs)
		return
	}
	n.logg.Info(ctx, what+" sent")
}

// OrderHeader is the summary message sent before the line items.
func OrderHeader(o orders.Order) string {
	return fmt.Sprintf("🆕 Nouvelle commande #%d\n%s — %s\nAdresse: %s\nTotal: %s",
		o.ID, o.Name, o.Phone, o.Address, money.Format(o.TotalCents))
}

// ItemCaption describes one ordered line.
func ItemCaption(it cart.Item) string {
	var b strings.Builder
	b.WriteString(it.Name)
	if it.Color != "" {
		b.WriteString(" • " + it.Color)
	}
	b.WriteString(" • T." + it.Size)
	fmt.Fprintf(&b, "\nQté: %d — %s", it.Qty, money.Format(it.LineTotal()))
	return b.String()
}
