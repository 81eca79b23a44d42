package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// ledger applies unit movements through whichever inventory binding it is given,
// so the state machines can credit or debit inside their own transaction.
type ledger struct {
	inventory repository.InventoryRepository
}

func (l ledger) credit(ctx context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	return l.inventory.Increment(ctx, group, delta)
}

func (l ledger) debit(ctx context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	rec, err := l.inventory.Decrement(ctx, group, delta)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, repository.ErrInsufficientStock) {
		return nil, err
	}

	available := 0
	current, getErr := l.inventory.Get(ctx, group)
	switch {
	case getErr == nil:
		available = current.Units
	case !errors.Is(getErr, pgx.ErrNoRows):
		return nil, getErr
	}
	return nil, apperrors.NewInsufficientStock(map[string]any{
		"bloodGroup": group,
		"available":  available,
		"requested":  delta,
	})
}
