package telegram

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/atelier-bot/internal/conversation"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

type recordingHandler struct {
	mu     sync.Mutex
	order  map[int64][]int
	failOn int
	panics int
}

func (h *recordingHandler) Handle(_ context.Context, ev conversation.Event) error {
	if ev.UpdateID == h.panics && h.panics != 0 {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order[ev.SessionID] = append(h.order[ev.SessionID], ev.UpdateID)
	if ev.UpdateID == h.failOn {
		return errors.New("handler failed")
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestDispatcherKeepsPerSessionOrder(t *testing.T) {
	h := &recordingHandler{order: map[int64][]int{}, failOn: 3, panics: 7}
	d, err := NewDispatcher(h, 3, testLogger())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	ctx := context.Background()
	d.Start(ctx)

	for i := 1; i <= 30; i++ {
		if !d.Dispatch(ctx, conversation.Event{UpdateID: i, SessionID: int64(i%4 + 1)}) {
			t.Fatalf("dispatch %d refused", i)
		}
	}
	d.Close()

	total := 0
	for session, ids := range h.order {
		for i := 1; i < len(ids); i++ {
			if ids[i] < ids[i-1] {
				t.Fatalf("session %d handled out of order: %v", session, ids)
			}
		}
		total += len(ids)
	}
	if total != 29 {
		t.Fatalf("expected 29 handled events (one panicked), got %d", total)
	}
	if d.Dispatch(ctx, conversation.Event{UpdateID: 99, SessionID: 1}) {
		t.Fatalf("dispatch after close must be refused")
	}
}

func TestDispatchUpdateSkipsUndecodable(t *testing.T) {
	h := &recordingHandler{order: map[int64][]int{}}
	d, err := NewDispatcher(h, 1, testLogger())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	ctx := context.Background()
	d.Start(ctx)
	if d.DispatchUpdate(ctx, tgbotapi.Update{UpdateID: 1}) {
		t.Fatalf("empty update should be skipped")
	}
	if !d.DispatchUpdate(ctx, tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{From: from(), Text: "hi"}}) {
		t.Fatalf("text update should be queued")
	}
	d.Close()
	if got := h.order[77]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("unexpected handled updates %v", got)
	}
}

func TestShardIsStable(t *testing.T) {
	if shard(-5, 4) != shard(-5, 4) || shard(-5, 4) < 0 {
		t.Fatalf("negative session ids must map to a valid worker")
	}
	if shard(9, 4) != 1 {
		t.Fatalf("unexpected shard %d", shard(9, 4))
	}
}
