package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, InventoryCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisInventoryCache(client, time.Minute, zap.NewNop())
}

func TestRedisInventoryCache_MissThenHit(t *testing.T) {
	_, c := setupTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	records := []domain.InventoryRecord{
		{BloodGroup: domain.BloodGroupAPos, Units: 4, LastUpdated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{BloodGroup: domain.BloodGroupONeg, Units: 0, LastUpdated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	require.NoError(t, c.Store(ctx, 0, records))

	got, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestRedisInventoryCache_InvalidateAndExpiry(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, 0, []domain.InventoryRecord{{BloodGroup: domain.BloodGroupBPos, Units: 1}}))
	assert.True(t, mr.Exists(InventoryKey))
	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists(InventoryKey))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	require.NoError(t, c.Store(ctx, gen, []domain.InventoryRecord{{BloodGroup: domain.BloodGroupBPos, Units: 1}}))
	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisInventoryCache_StoreSkipsOutdatedGeneration(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// A write commits and invalidates while the reader is still listing.
	require.NoError(t, c.Invalidate(ctx))

	require.NoError(t, c.Store(ctx, gen, []domain.InventoryRecord{{BloodGroup: domain.BloodGroupOPos, Units: 0}}))
	assert.False(t, mr.Exists(InventoryKey))

	_, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisInventoryCache_CorruptSnapshotIsAMiss(t *testing.T) {
	mr, c := setupTestCache(t)
	require.NoError(t, mr.Set(InventoryKey, "{not json"))

	_, ok, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(InventoryKey))
}

func TestNopInventoryCache(t *testing.T) {
	c := NewNopInventoryCache()
	require.NoError(t, c.Store(context.Background(), 0, []domain.InventoryRecord{{BloodGroup: domain.BloodGroupAPos}}))
	_, ok, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
