package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/atelier-bot/internal/cart"
	"github.com/angelmondragon/atelier-bot/internal/catalog"
	"github.com/angelmondragon/atelier-bot/internal/orders"
	"github.com/angelmondragon/atelier-bot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeSheets struct {
	t         *testing.T
	values    map[string]any
	appended  []map[string]any
	appendURL string
	status    int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Requested entity was not found."}}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		f.appendURL = r.URL.String()
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.appended = append(f.appended, body)
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-123"}`)
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(f.values)
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-123"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	fake.t = t
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), config.SheetsConfig{SpreadsheetID: "sheet-123"}, nil,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestProductSourceFeedsCatalog(t *testing.T) {
	fake := &fakeSheets{values: map[string]any{
		"range": "Products!A1:J4",
		"values": [][]any{
			{"ID", "Name", "Category", "Price Cents", "Colors", "Image Color Map JSON", "Active"},
			{1, "Runner", "Sneakers", 5999, "Black, Red", `{"Red":"gdrive:1AbCdEfGhIjKlMnOpQrStUvWxYz"}`, "oui"},
			{2, "Old", "Sneakers", 1000, "", "", 0},
			{3, "Boot", "Boots", 8999},
		},
	}}
	client := newFakeClient(t, fake)
	src, err := NewProductSource(client, "Products")
	require.NoError(t, err)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[2]["Active"], "short rows are padded")

	cache, err := catalog.NewCache(src, catalog.Options{})
	require.NoError(t, err)
	products, err := cache.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1, "inactive and padded-inactive rows are hidden")
	assert.Equal(t, "Runner", products[0].Name)
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=1AbCdEfGhIjKlMnOpQrStUvWxYz", catalog.ResolveImage(products[0], "red"))
}

func TestOrderStoreAppendsRow(t *testing.T) {
	fake := &fakeSheets{}
	client := newFakeClient(t, fake)
	store, err := NewOrderStore(client, "Orders")
	require.NoError(t, err)

	order := orders.Order{
		ID:         1757671200,
		CreatedAt:  time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC),
		SessionID:  42,
		Name:       "Jane Doe",
		Phone:      "0612345678",
		Address:    "12 rue X",
		Items:      []cart.Item{{ProductID: 1, Name: "Runner", Size: "42", Qty: 1, PriceCents: 5999}},
		TotalCents: 5999,
		Status:     orders.StatusNew,
	}
	require.NoError(t, store.Append(context.Background(), order))

	require.Len(t, fake.appended, 1)
	assert.Contains(t, fake.appendURL, "valueInputOption=USER_ENTERED")
	values := fake.appended[0]["values"].([]any)
	row := values[0].([]any)
	require.Len(t, row, 9)
	assert.Equal(t, float64(1757671200), row[0])
	assert.Equal(t, "2025-09-12 10:00:00", row[1])
	assert.Equal(t, "'0612345678", row[4])
	assert.JSONEq(t, `[{"id":1,"name":"Runner","size":"42","qty":1,"price_cents":5999}]`, row[6].(string))
	assert.Equal(t, "new", row[8])
}

func TestNotFoundIsExplained(t *testing.T) {
	client := newFakeClient(t, &fakeSheets{status: http.StatusNotFound})
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConstructorsValidate(t *testing.T) {
	_, err := New(context.Background(), config.SheetsConfig{}, nil)
	assert.Error(t, err)
	_, err = NewProductSource(nil, "Products")
	assert.Error(t, err)
	_, err = NewOrderStore(&Client{}, "")
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	assert.Empty(t, records(nil))
	rows := records([][]any{{"id", "", "name"}, {1, "ignored", "A"}})
	require.Len(t, rows, 1)
	assert.Equal(t, catalog.Row{"id": 1, "name": "A"}, rows[0])
}
