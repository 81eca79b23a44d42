package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

const (
	// InventoryKey is the Redis key holding the inventory snapshot.
	InventoryKey = "bloodbank:inventory:snapshot"
	// GenerationKey counts invalidations. A snapshot read under an older
	// generation is never written back.
	GenerationKey = "bloodbank:inventory:generation"
)

var errStaleGeneration = errors.New("inventory generation moved")

// InventoryCache holds a read-through copy of the inventory listing.
// Writers invalidate it after commit; it is never the source of truth.
//
// Readers take Generation before listing from the store and pass it to
// Store, which drops the snapshot when an invalidation happened in between.
type InventoryCache interface {
	// Load returns ok=false on a miss.
	Load(ctx context.Context) (records []domain.InventoryRecord, ok bool, err error)
	Generation(ctx context.Context) (int64, error)
	Store(ctx context.Context, generation int64, records []domain.InventoryRecord) error
	Invalidate(ctx context.Context) error
}

type redisInventoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisInventoryCache caches snapshots under InventoryKey for ttl.
func NewRedisInventoryCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) InventoryCache {
	return &redisInventoryCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisInventoryCache) Load(ctx context.Context) ([]domain.InventoryRecord, bool, error) {
	raw, err := c.client.Get(ctx, InventoryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var records []domain.InventoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		c.logger.Warn("discarding unreadable inventory snapshot", zap.Error(err))
		_ = c.client.Del(ctx, InventoryKey).Err()
		return nil, false, nil
	}
	return records, true, nil
}

func (c *redisInventoryCache) Generation(ctx context.Context) (int64, error) {
	return readGeneration(ctx, c.client)
}

func (c *redisInventoryCache) Store(ctx context.Context, generation int64, records []domain.InventoryRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, InventoryKey, raw, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		c.logger.Debug("skipping stale inventory snapshot", zap.Int64("generation", generation))
		return nil
	}
	return err
}

func (c *redisInventoryCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, InventoryKey)
		return nil
	})
	return err
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, r stringGetter) (int64, error) {
	n, err := r.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

type nopInventoryCache struct{}

// NewNopInventoryCache always misses.
func NewNopInventoryCache() InventoryCache {
	return nopInventoryCache{}
}

func (nopInventoryCache) Load(context.Context) ([]domain.InventoryRecord, bool, error) {
	return nil, false, nil
}

func (nopInventoryCache) Generation(context.Context) (int64, error) { return 0, nil }

func (nopInventoryCache) Store(context.Context, int64, []domain.InventoryRecord) error { return nil }

func (nopInventoryCache) Invalidate(context.Context) error { return nil }
