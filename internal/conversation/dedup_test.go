package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/atelier-bot/pkg/config"
	pkgredis "github.com/angelmondragon/atelier-bot/pkg/redis"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduperExpires(t *testing.T) {
	now := time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC)
	d := NewMemoryDeduper(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	seen, _ := d.Seen(ctx, 1)
	require.False(t, seen)
	seen, _ = d.Seen(ctx, 1)
	require.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = d.Seen(ctx, 1)
	require.False(t, seen)
}

func TestMemoryDeduperSweepsOncePerTTL(t *testing.T) {
	now := time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC)
	d := NewMemoryDeduper(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	for id := 1; id <= 3; id++ {
		_, _ = d.Seen(ctx, id)
	}
	now = now.Add(30 * time.Second)
	_, _ = d.Seen(ctx, 4)
	require.Len(t, d.seen, 4, "no sweep before a full TTL has passed")

	now = now.Add(40 * time.Second)
	seen, _ := d.Seen(ctx, 5)
	require.False(t, seen)
	require.Len(t, d.seen, 2, "ids older than the TTL are swept")
	_, kept := d.seen[4]
	require.True(t, kept)
}

func TestRedisDeduper(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), config.RedisConfig{Address: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	d, err := NewRedisDeduper(client, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	seen, err := d.Seen(ctx, 42)
	require.NoError(t, err)
	require.False(t, seen)
	seen, err = d.Seen(ctx, 42)
	require.NoError(t, err)
	require.True(t, seen)
	require.True(t, mr.Exists("shopbot:dedup:update:42"))
}
