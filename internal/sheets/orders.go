package sheets

import (
	"context"
	"fmt"

	"github.com/angelmondragon/atelier-bot/internal/orders"
	gsheets "google.golang.org/api/sheets/v4"
)

// OrderStore appends one row per order to the orders tab.
type OrderStore struct {
	client *Client
	tab    string
}

func NewOrderStore(client *Client, tab string) (*OrderStore, error) {
	if client == nil {
		return nil, fmt.Errorf("sheets client required")
	}
	if tab == "" {
		return nil, fmt.Errorf("orders tab required")
	}
	return &OrderStore{client: client, tab: tab}, nil
}

func (s *OrderStore) Append(ctx context.Context, order orders.Order) error {
	row, err := orderRow(order)
	if err != nil {
		return err
	}
	_, err = s.client.svc.Spreadsheets.Values.Append(s.client.spreadsheetID, s.tab, &gsheets.ValueRange{
		Values: [][]any{row},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return s.client.wrap(err, "append order")
}

// orderRow lays out order_id, timestamp, user_id, name, phone, address, items, total_cents, status.
// The phone is written as text so leading zeros and "+" prefixes survive.
func orderRow(o orders.Order) ([]any, error) {
	items, err := o.ItemsJSON()
	if err != nil {
		return nil, err
	}
	status := o.Status
	if status == "" {
		status = orders.StatusNew
	}
	return []any{
		o.ID,
		o.Timestamp(),
		o.SessionID,
		o.Name,
		"'" + o.Phone,
		o.Address,
		items,
		o.TotalCents,
		status,
	}, nil
}
