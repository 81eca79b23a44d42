package service

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/cache"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/events"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

func TestInventory_Conservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))
	net := map[domain.BloodGroup]int{}

	for range 500 {
		group := domain.BloodGroups[rng.IntN(len(domain.BloodGroups))]
		delta := rng.IntN(7) - 3
		if delta == 0 {
			continue
		}
		_, err := f.inventory.Adjust(ctx, "admin", group, delta)
		if err != nil {
			require.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock), "unexpected %v", err)
			continue
		}
		net[group] += delta
	}

	for _, group := range domain.BloodGroups {
		assert.Equal(t, net[group], f.units(t, group), "group %s", group)
		assert.GreaterOrEqual(t, f.units(t, group), 0)
	}
}

func TestInventory_AdjustValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.Adjust(ctx, "admin", domain.BloodGroupAPos, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = f.inventory.Adjust(ctx, "admin", "Z", 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = f.inventory.Credit(ctx, "admin", domain.BloodGroupAPos, -1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.inventory.Debit(ctx, "admin", domain.BloodGroupAPos, 1)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock))
	assert.Equal(t, 0, apperrors.ToDomainError(err).Details["available"])
}

func TestInventory_CreditCreatesRecord(t *testing.T) {
	f := newFixture(t)
	rec, err := f.inventory.Credit(context.Background(), "admin", domain.BloodGroupABNeg, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.BloodGroupABNeg, rec.BloodGroup)
	assert.Equal(t, 2, rec.Units)
	assert.False(t, rec.LastUpdated.IsZero())

	rec, err = f.inventory.Debit(context.Background(), "admin", domain.BloodGroupABNeg, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Units)
}

func TestInventory_AllOrderedAndCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, domain.BloodGroupONeg, 1)
	f.stock(t, domain.BloodGroupAPos, 2)
	f.stock(t, domain.BloodGroupABPos, 3)

	seq, err := f.inventory.All(ctx)
	require.NoError(t, err)
	var groups []domain.BloodGroup
	for rec := range seq {
		groups = append(groups, rec.BloodGroup)
	}
	assert.Equal(t, []domain.BloodGroup{domain.BloodGroupAPos, domain.BloodGroupABPos, domain.BloodGroupONeg}, groups)
	assert.True(t, f.cache.isCached())

	// A committed adjustment drops the snapshot so the next read is fresh.
	f.stock(t, domain.BloodGroupAPos, 5)
	assert.False(t, f.cache.isCached())

	seq, err = f.inventory.All(ctx)
	require.NoError(t, err)
	records := slices.Collect(seq)
	require.Len(t, records, 3)
	assert.Equal(t, 7, records[0].Units)
}

// listHookStore runs afterList once, right after the next inventory listing
// returns and before the caller can act on it.
type listHookStore struct {
	repository.Store
	afterList func()
}

func (s *listHookStore) Repos() repository.Repositories {
	repos := s.Store.Repos()
	repos.Inventory = listHookInventory{InventoryRepository: repos.Inventory, store: s}
	return repos
}

type listHookInventory struct {
	repository.InventoryRepository
	store *listHookStore
}

func (r listHookInventory) List(ctx context.Context) ([]domain.InventoryRecord, error) {
	records, err := r.InventoryRepository.List(ctx)
	if hook := r.store.afterList; hook != nil {
		r.store.afterList = nil
		hook()
	}
	return records, err
}

func TestInventory_AllDoesNotCacheListingOverlappingCredit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	inventoryCache := cache.NewRedisInventoryCache(client, time.Minute, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	NewEventListener(dispatcher, inventoryCache, nil).RegisterHandlers()
	store := &listHookStore{Store: repository.NewMemoryStore()}
	svc := NewInventoryService(InventoryDependencies{Store: store, Cache: inventoryCache, Dispatcher: dispatcher})
	ctx := context.Background()

	store.afterList = func() {
		_, err := svc.Credit(ctx, "admin", domain.BloodGroupOPos, 5)
		require.NoError(t, err)
	}

	seq, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(seq))
	assert.False(t, mr.Exists(cache.InventoryKey))

	seq, err = svc.All(ctx)
	require.NoError(t, err)
	records := slices.Collect(seq)
	require.Len(t, records, 1)
	assert.Equal(t, domain.BloodGroupOPos, records[0].BloodGroup)
	assert.Equal(t, 5, records[0].Units)
	assert.True(t, mr.Exists(cache.InventoryKey))
}

func TestInventory_ListOrderMatchesRank(t *testing.T) {
	f := newFixture(t)
	for _, group := range []domain.BloodGroup{domain.BloodGroupONeg, domain.BloodGroupABPos, domain.BloodGroupANeg, domain.BloodGroupBPos} {
		f.stock(t, group, 1)
	}

	records, err := f.store.Repos().Inventory.List(context.Background())
	require.NoError(t, err)
	var groups []domain.BloodGroup
	for _, rec := range records {
		groups = append(groups, rec.BloodGroup)
	}
	assert.Equal(t, []domain.BloodGroup{
		domain.BloodGroupANeg, domain.BloodGroupBPos, domain.BloodGroupABPos, domain.BloodGroupONeg,
	}, groups)
}
