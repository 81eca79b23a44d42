package service

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/cache"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/events"
	"github.com/spec-kit/bloodbank-service/internal/observability"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// InventoryService is the authoritative per-blood-group unit counter.
type InventoryService struct {
	store   repository.Store
	cache   cache.InventoryCache
	metrics *observability.Metrics
	logger  *zap.Logger
	publisher
}

// InventoryDependencies bundles collaborators for the inventory service.
type InventoryDependencies struct {
	Store      repository.Store
	Cache      cache.InventoryCache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewInventoryService constructs the service. A nil Cache disables caching.
func NewInventoryService(deps InventoryDependencies) *InventoryService {
	c := deps.Cache
	if c == nil {
		c = cache.NewNopInventoryCache()
	}
	logger := orNop(deps.Logger)
	return &InventoryService{
		store:     deps.Store,
		cache:     c,
		metrics:   deps.Metrics,
		logger:    logger,
		publisher: publisher{dispatcher: deps.Dispatcher, logger: logger},
	}
}

// Credit adds delta units to group, creating the record on first write.
func (s *InventoryService) Credit(ctx context.Context, actorID string, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	if delta <= 0 {
		return nil, apperrors.NewValidationError("units must be positive", map[string]any{"units": delta})
	}
	return s.Adjust(ctx, actorID, group, delta)
}

// Debit removes delta units from group or fails with INSUFFICIENT_STOCK.
func (s *InventoryService) Debit(ctx context.Context, actorID string, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	if delta <= 0 {
		return nil, apperrors.NewValidationError("units must be positive", map[string]any{"units": delta})
	}
	return s.Adjust(ctx, actorID, group, -delta)
}

// Adjust applies a signed, non-zero delta to group.
func (s *InventoryService) Adjust(ctx context.Context, actorID string, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	if !group.Valid() {
		return nil, apperrors.NewValidationError("invalid blood group", map[string]any{"bloodGroup": group})
	}
	if delta == 0 {
		return nil, apperrors.NewValidationError("units must be non-zero", map[string]any{"units": delta})
	}

	var rec *domain.InventoryRecord
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		l := ledger{inventory: repos.Inventory}
		var err error
		if delta > 0 {
			rec, err = l.credit(ctx, group, delta)
		} else {
			rec, err = l.debit(ctx, group, -delta)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if delta > 0 {
		s.metrics.RecordCredit(ctx, string(group), delta)
	} else {
		s.metrics.RecordDebit(ctx, string(group), -delta)
	}
	s.logger.Info("inventory adjusted",
		zap.String("blood_group", string(group)),
		zap.Int("delta", delta),
		zap.Int("units", rec.Units))
	s.publish(ctx, events.NewEvent(events.EventInventoryAdjusted, string(group), actorID, events.InventoryAdjustedPayload{
		BloodGroup: group,
		Delta:      delta,
		Units:      rec.Units,
	}))
	return rec, nil
}

// All returns a point-in-time snapshot of every record in blood group
// display order. The snapshot is served from cache when present.
func (s *InventoryService) All(ctx context.Context) (iter.Seq[domain.InventoryRecord], error) {
	records, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("inventory cache read failed", zap.Error(err))
	}
	if ok {
		return slices.Values(records), nil
	}

	// The generation is read before listing so a snapshot that overlaps a
	// committed write is not written back.
	generation, genErr := s.cache.Generation(ctx)
	records, err = s.store.Repos().Inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		s.logger.Warn("inventory cache generation read failed", zap.Error(genErr))
	} else if err := s.cache.Store(ctx, generation, records); err != nil {
		s.logger.Warn("inventory cache write failed", zap.Error(err))
	}
	return slices.Values(records), nil
}

// Units returns the current count for group, zero when no record exists yet.
func (s *InventoryService) Units(ctx context.Context, group domain.BloodGroup) (int, error) {
	rec, err := s.store.Repos().Inventory.Get(ctx, group)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return rec.Units, nil
}
