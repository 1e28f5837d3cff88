package orders

import (
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/atelier-bot/internal/cart"
)

func TestIDGeneratorIsMonotonic(t *testing.T) {
	now := time.Unix(1000, 0)
	g := NewIDGenerator(func() time.Time { return now })

	if id := g.Next(); id != 1000 {
		t.Fatalf("expected unix seconds, got %d", id)
	}
	if id := g.Next(); id != 1001 {
		t.Fatalf("same second must bump, got %d", id)
	}

	now = time.Unix(900, 0)
	if id := g.Next(); id != 1002 {
		t.Fatalf("clock going backwards must not decrease ids, got %d", id)
	}

	now = time.Unix(5000, 0)
	if id := g.Next(); id != 5000 {
		t.Fatalf("expected clock to take over again, got %d", id)
	}
}

func TestIDGeneratorConcurrentUnique(t *testing.T) {
	g := NewIDGenerator(func() time.Time { return time.Unix(42, 0) })
	var mu sync.Mutex
	seen := map[int64]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Next()
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()
}

func TestOrderItemsJSONAndTimestamp(t *testing.T) {
	o := Order{
		CreatedAt: time.Date(2025, 9, 12, 10, 4, 5, 0, time.UTC),
		Items:     []cart.Item{{ProductID: 1, Name: "Runner", Size: "42", Qty: 1, PriceCents: 5999}},
	}
	got, err := o.ItemsJSON()
	if err != nil {
		t.Fatalf("ItemsJSON: %v", err)
	}
	want := `[{"id":1,"name":"Runner","size":"42","qty":1,"price_cents":5999}]`
	if got != want {
		t.Fatalf("unexpected items json %s", got)
	}
	if o.Timestamp() != "2025-09-12 10:04:05" {
		t.Fatalf("unexpected timestamp %q", o.Timestamp())
	}

	empty, _ := Order{}.ItemsJSON()
	if empty != "[]" {
		t.Fatalf("empty snapshot should encode as [], got %s", empty)
	}
}
