package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
	"go.uber.org/multierr"
)

// DefaultTTL bounds how stale a cached catalog snapshot may be.
const DefaultTTL = 5 * time.Second

var (
	ErrProductNotFound    = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	ErrCatalogUnavailable = pkgerrors.New(pkgerrors.CodeDependency, "catalog unavailable")
)

// Source returns every product row of the external catalog.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
}

// FetchRecorder observes upstream catalog fetches.
type FetchRecorder interface {
	ObserveCatalogFetch(duration time.Duration, ok bool)
}

// Page is one slice of a product listing.
type Page struct {
	Items []Product
	Total int
}

// Options tune the cache.
type Options struct {
	TTL     time.Duration
	Now     func() time.Time
	Logger  *logger.Logger
	Metrics FetchRecorder
}

// Cache serves a normalised view of the catalog source, refetching after the TTL expires.
type Cache struct {
	source  Source
	ttl     time.Duration
	now     func() time.Time
	logg    *logger.Logger
	metrics FetchRecorder

	mu        sync.RWMutex
	products  []Product
	fetchedAt time.Time
	loaded    bool
}

// NewCache wires the catalog source.
func NewCache(source Source, opts Options) (*Cache, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	c := &Cache{
		source:  source,
		ttl:     opts.TTL,
		now:     opts.Now,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Products returns the active products, refetching when the snapshot is older than the TTL.
// Concurrent readers past the TTL may each refetch.
func (c *Cache) Products(ctx context.Context) ([]Product, error) {
	now := c.now()
	c.mu.RLock()
	if c.loaded && now.Sub(c.fetchedAt) < c.ttl {
		products := c.products
		c.mu.RUnlock()
		return products, nil
	}
	c.mu.RUnlock()
	return c.refresh(ctx, now)
}

func (c *Cache) refresh(ctx context.Context, now time.Time) ([]Product, error) {
	start := time.Now()
	rows, err := c.source.Rows(ctx)
	if c.metrics != nil {
		c.metrics.ObserveCatalogFetch(time.Since(start), err == nil)
	}
	if err != nil {
		if c.logg != nil {
			c.logg.Error(ctx, "catalog fetch failed", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	products, skipped := ParseRows(rows)
	if len(skipped) > 0 && c.logg != nil {
		fields := map[string]any{"skipped": len(skipped), "kept": len(products)}
		c.logg.Warn(c.logg.WithFields(ctx, fields), "catalog rows skipped: "+multierr.Combine(skipped...).Error())
	}

	c.mu.Lock()
	c.products = products
	c.fetchedAt = now
	c.loaded = true
	c.mu.Unlock()
	return products, nil
}

// ListCategories returns the distinct, sorted, non-empty categories.
func (c *Cache) ListCategories(ctx context.Context) ([]string, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	cats := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		cats = append(cats, p.Category)
	}
	sort.Strings(cats)
	return cats, nil
}

// ListProducts pages through products, filtered by category when one is given.
func (c *Cache) ListProducts(ctx context.Context, category string, offset, limit int) (Page, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return Page{}, err
	}
	filtered := products
	if category != "" {
		filtered = make([]Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
	}

	total := len(filtered)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Page{Items: []Product{}, Total: total}, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	items := make([]Product, end-offset)
	copy(items, filtered[offset:end])
	return Page{Items: items, Total: total}, nil
}

// GetProduct returns one active product or ErrProductNotFound.
func (c *Cache) GetProduct(ctx context.Context, id int64) (Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// ResolveImage resolves the image of a product by id; unknown products resolve to no image.
func (c *Cache) ResolveImage(ctx context.Context, productID int64, color string) string {
	p, err := c.GetProduct(ctx, productID)
	if err != nil {
		return ""
	}
	return ResolveImage(p, color)
}
