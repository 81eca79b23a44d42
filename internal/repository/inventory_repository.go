package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// listInventoryQuery orders rows the same way as domain.BloodGroup.Rank.
const listInventoryQuery = `
        SELECT blood_group, units, last_updated FROM inventory
        ORDER BY array_position(ARRAY['A+','A-','B+','B-','AB+','AB-','O+','O-'], blood_group)`

type inventoryRepository struct {
	db DBTX
}

// NewInventoryRepository instantiates the repository.
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Increment(ctx context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	const query = `
        INSERT INTO inventory (blood_group, units, last_updated)
        VALUES ($1, $2, NOW())
        ON CONFLICT (blood_group) DO UPDATE
            SET units = inventory.units + EXCLUDED.units, last_updated = NOW()
        RETURNING blood_group, units, last_updated`
	return scanInventory(r.db.QueryRow(ctx, query, group, delta))
}

func (r *inventoryRepository) Decrement(ctx context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	const query = `
        UPDATE inventory SET units = units - $2, last_updated = NOW()
        WHERE blood_group=$1 AND units >= $2
        RETURNING blood_group, units, last_updated`
	rec, err := scanInventory(r.db.QueryRow(ctx, query, group, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInsufficientStock
	}
	return rec, err
}

func (r *inventoryRepository) Get(ctx context.Context, group domain.BloodGroup) (*domain.InventoryRecord, error) {
	const query = `SELECT blood_group, units, last_updated FROM inventory WHERE blood_group=$1`
	return scanInventory(r.db.QueryRow(ctx, query, group))
}

func (r *inventoryRepository) List(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := r.db.Query(ctx, listInventoryQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryRecord
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func (r *inventoryRepository) TotalUnits(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(units), 0) FROM inventory`).Scan(&n)
	return n, err
}

func scanInventory(row pgx.Row) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	if err := row.Scan(&rec.BloodGroup, &rec.Units, &rec.LastUpdated); err != nil {
		return nil, err
	}
	return &rec, nil
}
