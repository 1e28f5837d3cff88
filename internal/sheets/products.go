package sheets

import (
	"context"
	"fmt"

	"github.com/angelmondragon/atelier-bot/internal/catalog"
)

// ProductSource reads every record of the products tab, keyed by the header row.
type ProductSource struct {
	client *Client
	tab    string
}

func NewProductSource(client *Client, tab string) (*ProductSource, error) {
	if client == nil {
		return nil, fmt.Errorf("sheets client required")
	}
	if tab == "" {
		return nil, fmt.Errorf("products tab required")
	}
	return &ProductSource{client: client, tab: tab}, nil
}

func (s *ProductSource) Rows(ctx context.Context) ([]catalog.Row, error) {
	resp, err := s.client.svc.Spreadsheets.Values.Get(s.client.spreadsheetID, s.tab).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, s.client.wrap(err, "read products")
	}
	return records(resp.Values), nil
}

// records turns a header row plus data rows into maps; short rows are padded with empty cells.
func records(values [][]any) []catalog.Row {
	if len(values) == 0 {
		return []catalog.Row{}
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = fmt.Sprint(h)
	}

	rows := make([]catalog.Row, 0, len(values)-1)
	for _, line := range values[1:] {
		row := make(catalog.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(line) {
				row[h] = line[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
