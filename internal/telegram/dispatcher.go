package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/atelier-bot/internal/conversation"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

const (
	DefaultWorkers   = 8
	defaultQueueSize = 64
)

// Handler consumes decoded events.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// Dispatcher fans events out to a fixed set of workers. Events of one session always land on
// the same worker, so they are handled in arrival order while other sessions proceed in parallel.
type Dispatcher struct {
	handler Handler
	logg    *logger.Logger
	queues  []chan conversation.Event
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(handler Handler, workers int, logg *logger.Logger) (*Dispatcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("event handler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	d := &Dispatcher{handler: handler, logg: logg, queues: make([]chan conversation.Event, workers)}
	for i := range d.queues {
		d.queues[i] = make(chan conversation.Event, defaultQueueSize)
	}
	return d, nil
}

// Start launches the workers. They stop once Close has drained the queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, q := range d.queues {
		d.wg.Add(1)
		go d.work(ctx, q)
	}
}

func (d *Dispatcher) work(ctx context.Context, q <-chan conversation.Event) {
	defer d.wg.Done()
	for ev := range q {
		d.handle(ctx, ev)
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev conversation.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logg.Error(d.logg.WithSessionID(ctx, ev.SessionID), "event handler panicked", fmt.Errorf("%v", rec))
		}
	}()
	if err := d.handler.Handle(context.WithoutCancel(ctx), ev); err != nil {
		fields := map[string]any{"kind": ev.Kind.String(), "update_id": ev.UpdateID}
		d.logg.Error(d.logg.WithFields(d.logg.WithSessionID(ctx, ev.SessionID), fields), "event handling failed", err)
	}
}

// Dispatch queues an event, blocking while its worker is busy. It reports false after Close
// or when ctx ends first.
func (d *Dispatcher) Dispatch(ctx context.Context, ev conversation.Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	q := d.queues[shard(ev.SessionID, len(d.queues))]
	select {
	case q <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// DispatchUpdate decodes a raw update and queues it. Updates the bot ignores report false.
func (d *Dispatcher) DispatchUpdate(ctx context.Context, update tgbotapi.Update) bool {
	ev, ok := Decode(update)
	if !ok {
		d.logg.Debug(d.logg.WithUpdateID(ctx, update.UpdateID), "update ignored")
		return false
	}
	return d.Dispatch(ctx, ev)
}

// Close stops accepting events and waits for queued ones to be handled.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func shard(sessionID int64, n int) int {
	s := sessionID % int64(n)
	if s < 0 {
		s = -s
	}
	return int(s)
}
