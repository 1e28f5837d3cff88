package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
	"github.com/angelmondragon/atelier-bot/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubSource struct {
	mu    sync.Mutex
	calls int
	rows  []Row
	err   error
}

func (s *stubSource) Rows(context.Context) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type recordedFetch struct{ ok bool }

type fetchRecorder struct{ fetches []recordedFetch }

func (r *fetchRecorder) ObserveCatalogFetch(_ time.Duration, ok bool) {
	r.fetches = append(r.fetches, recordedFetch{ok: ok})
}

func sampleRows() []Row {
	return []Row{
		{"id": "1", "name": "Runner", "category": "Sneakers", "price_cents": "5999"},
		{"id": "2", "name": "Boot", "category": "Boots", "price_cents": "8999"},
		{"id": "3", "name": "Court", "category": "Sneakers", "price_cents": "4999"},
		{"id": "4", "name": "Hidden", "category": "Sandals", "active": "0"},
		{"id": "5", "name": "Plain", "category": "", "price_cents": "1000"},
	}
}

func newTestCache(t *testing.T, src Source) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC)}
	c, err := NewCache(src, Options{TTL: 5 * time.Second, Now: clock.Now})
	require.NoError(t, err)
	return c, clock
}

func TestCacheFetchesOncePerWindow(t *testing.T) {
	src := &stubSource{rows: sampleRows()}
	c, clock := newTestCache(t, src)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := c.Products(ctx)
		require.NoError(t, err)
		clock.now = clock.now.Add(400 * time.Millisecond)
	}
	assert.Equal(t, 1, src.count(), "reads within the TTL must reuse the snapshot")

	clock.now = clock.now.Add(5 * time.Second)
	_, err := c.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.count(), "a read after expiry must refetch")
}

func TestCacheRefreshForcesFetch(t *testing.T) {
	src := &stubSource{rows: sampleRows()}
	c, _ := newTestCache(t, src)
	_, _ = c.Products(context.Background())
	_, err := c.refresh(context.Background(), c.now())
	require.NoError(t, err)
	assert.Equal(t, 2, src.count())
}

func TestCacheFetchFailure(t *testing.T) {
	src := &stubSource{err: errors.New("sheet 404")}
	rec := &fetchRecorder{}
	c, err := NewCache(src, Options{Metrics: rec})
	require.NoError(t, err)

	_, err = c.ListCategories(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	require.Len(t, rec.fetches, 1)
	assert.False(t, rec.fetches[0].ok)
}

func TestListCategories(t *testing.T) {
	c, _ := newTestCache(t, &stubSource{rows: sampleRows()})
	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Boots", "Sneakers"}, cats)
}

func TestListProducts(t *testing.T) {
	c, _ := newTestCache(t, &stubSource{rows: sampleRows()})
	ctx := context.Background()

	page, err := c.ListProducts(ctx, "Sneakers", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Runner", page.Items[0].Name)

	page, err = c.ListProducts(ctx, "Sneakers", 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Court", page.Items[0].Name)

	page, err = c.ListProducts(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total, "empty category lists every active product")

	page, err = c.ListProducts(ctx, "Sneakers", 5, 4)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.Total)

	page, err = c.ListProducts(ctx, "Unknown", 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

func TestGetProductAndResolveImage(t *testing.T) {
	rows := []Row{{
		"id": "9", "name": "Runner", "image_url": "https://cdn.example.com/base.jpg",
		"image_color_map_json": `{"Red": "https://cdn.example.com/red.jpg"}`,
	}}
	c, _ := newTestCache(t, &stubSource{rows: rows})
	ctx := context.Background()

	p, err := c.GetProduct(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Runner", p.Name)

	_, err = c.GetProduct(ctx, 10)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	assert.Equal(t, "https://cdn.example.com/red.jpg", c.ResolveImage(ctx, 9, " red"))
	assert.Equal(t, "https://cdn.example.com/base.jpg", c.ResolveImage(ctx, 9, "Blue"))
	assert.Equal(t, "", c.ResolveImage(ctx, 10, "Red"))
}

func TestNewCacheRequiresSource(t *testing.T) {
	_, err := NewCache(nil, Options{})
	assert.Error(t, err)
}

func TestSQLSource(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migrate.Up(context.Background(), sqlDB, "sqlite"))

	require.NoError(t, conn.Exec(`INSERT INTO products (id, name, category, price_cents, colors, active) VALUES
		(1, 'Runner', 'Sneakers', 5999, 'Black,Red', '1'),
		(2, 'Old', 'Sneakers', 1000, '', '0')`).Error)

	src, err := NewSQLSource(conn)
	require.NoError(t, err)
	c, err := NewCache(src, Options{})
	require.NoError(t, err)

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(5999), products[0].PriceCents)
	assert.Equal(t, []string{"Black", "Red"}, products[0].Colors)
}
