package orders

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/atelier-bot/internal/cart"
)

const (
	StatusNew = "new"

	// TimestampLayout is how order timestamps are written to the order store.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Customer carries the delivery details collected during checkout.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Order is immutable once created, apart from its status.
type Order struct {
	ID         int64       `json:"order_id"`
	CreatedAt  time.Time   `json:"created_at"`
	SessionID  int64       `json:"user_id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	Items      []cart.Item `json:"items"`
	TotalCents int64       `json:"total_cents"`
	Status     string      `json:"status"`
}

// ItemsJSON serialises the item snapshot the way the order stores keep it.
func (o Order) ItemsJSON() (string, error) {
	items := o.Items
	if items == nil {
		items = []cart.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode order items: %w", err)
	}
	return string(b), nil
}

// Timestamp renders CreatedAt with TimestampLayout.
func (o Order) Timestamp() string {
	return o.CreatedAt.Format(TimestampLayout)
}

// IDGenerator hands out time-derived order ids that never repeat or decrease within a process.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the current unix second, or last+1 when that second was already used.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().Unix()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
