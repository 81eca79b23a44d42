package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/cache"
	"github.com/spec-kit/bloodbank-service/internal/events"
)

// EventListener reacts to committed domain events: it drops the inventory
// snapshot after stock changes and logs every event.
type EventListener struct {
	dispatcher events.Dispatcher
	cache      cache.InventoryCache
	logger     *zap.Logger
}

// NewEventListener creates the listener.
func NewEventListener(dispatcher events.Dispatcher, inventoryCache cache.InventoryCache, logger *zap.Logger) *EventListener {
	if inventoryCache == nil {
		inventoryCache = cache.NewNopInventoryCache()
	}
	return &EventListener{
		dispatcher: dispatcher,
		cache:      inventoryCache,
		logger:     orNop(logger),
	}
}

// RegisterHandlers subscribes to events.
func (l *EventListener) RegisterHandlers() {
	if l.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		if eventType.TouchesInventory() {
			l.dispatcher.Subscribe(eventType, l.invalidateInventory)
		}
		l.dispatcher.Subscribe(eventType, l.logEvent)
	}
}

func (l *EventListener) invalidateInventory(ctx context.Context, event events.Event) error {
	if err := l.cache.Invalidate(ctx); err != nil {
		l.logger.Warn("inventory cache invalidation failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}

func (l *EventListener) logEvent(_ context.Context, event events.Event) error {
	l.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("entity_id", event.EntityID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
