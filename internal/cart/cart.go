package cart

// Item is one cart line. Lines are unique per (ProductID, Color, Size).
type Item struct {
	ProductID  int64  `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Size       string `json:"size"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

// LineTotal returns the unit price times quantity.
func (i Item) LineTotal() int64 {
	return i.PriceCents * int64(i.Qty)
}

func (i Item) sameLine(other Item) bool {
	return i.ProductID == other.ProductID && i.Color == other.Color && i.Size == other.Size
}

// Cart is an ordered list of lines; insertion order is preserved.
type Cart struct {
	Items []Item `json:"items"`
}

// Add merges into a matching line or appends a new one. Quantity defaults to 1.
func (c *Cart) Add(item Item) {
	if item.Qty < 1 {
		item.Qty = 1
	}
	for idx := range c.Items {
		if c.Items[idx].sameLine(item) {
			c.Items[idx].Qty += item.Qty
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveAt drops the line at index. Out-of-range indexes leave the cart unchanged.
func (c *Cart) RemoveAt(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items = append(c.Items[:index:index], c.Items[index+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Total sums price times quantity over every line.
func (c Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.LineTotal()
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the lines that later mutations cannot affect.
func (c Cart) Snapshot() []Item {
	if len(c.Items) == 0 {
		return nil
	}
	out := make([]Item, len(c.Items))
	copy(out, c.Items)
	return out
}
