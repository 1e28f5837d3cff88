package conversation

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// DefaultDedupTTL is how long a processed update id is remembered.
const DefaultDedupTTL = 24 * time.Hour

// Deduper reports whether an inbound update was already handled, marking it otherwise.
type Deduper interface {
	Seen(ctx context.Context, updateID int) (bool, error)
}

type processedMarker interface {
	MarkProcessed(ctx context.Context, scope, id string, ttl time.Duration) (bool, error)
}

// RedisDeduper remembers update ids in Redis so retried deliveries are dropped across restarts.
type RedisDeduper struct {
	marker processedMarker
	ttl    time.Duration
}

func NewRedisDeduper(marker processedMarker, ttl time.Duration) (*RedisDeduper, error) {
	if marker == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDeduper{marker: marker, ttl: ttl}, nil
}

func (d *RedisDeduper) Seen(ctx context.Context, updateID int) (bool, error) {
	return d.marker.MarkProcessed(ctx, "update", strconv.Itoa(updateID), d.ttl)
}

// MemoryDeduper is the single-process variant. Expired entries are swept at most once per TTL,
// so the map never holds more than two TTL windows of ids.
type MemoryDeduper struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	seen      map[int]time.Time
	lastSweep time.Time
}

func NewMemoryDeduper(ttl time.Duration, now func() time.Time) *MemoryDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryDeduper{ttl: ttl, now: now, seen: map[int]time.Time{}, lastSweep: now()}
}

func (d *MemoryDeduper) Seen(_ context.Context, updateID int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if now.Sub(d.lastSweep) >= d.ttl {
		d.sweep(now)
	}
	if at, ok := d.seen[updateID]; ok && now.Sub(at) < d.ttl {
		return true, nil
	}
	d.seen[updateID] = now
	return false, nil
}

func (d *MemoryDeduper) sweep(now time.Time) {
	for id, at := range d.seen {
		if now.Sub(at) >= d.ttl {
			delete(d.seen, id)
		}
	}
	d.lastSweep = now
}
