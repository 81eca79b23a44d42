package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

const requestColumns = `r.id, r.receiver_user_id, r.blood_group, r.units, r.urgency, r.location_lng, r.location_lat,
               r.status, r.created_at, r.updated_at`

type bloodRequestRepository struct {
	db DBTX
}

// NewBloodRequestRepository instantiates the repository.
func NewBloodRequestRepository(db DBTX) BloodRequestRepository {
	return &bloodRequestRepository{db: db}
}

func (r *bloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	const query = `
        INSERT INTO blood_requests (receiver_user_id, blood_group, units, urgency, location_lng, location_lat, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		req.ReceiverID,
		req.BloodGroup,
		req.Units,
		req.Urgency,
		req.Location.Longitude(),
		req.Location.Latitude(),
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *bloodRequestRepository) GetByID(ctx context.Context, id string) (*domain.BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests r WHERE r.id=$1`
	return scanBloodRequest(r.db.QueryRow(ctx, query, id))
}

func (r *bloodRequestRepository) ListByReceiver(ctx context.Context, receiverID string) ([]domain.BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests r WHERE r.receiver_user_id=$1 ORDER BY r.created_at DESC`
	rows, err := r.db.Query(ctx, query, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BloodRequest
	for rows.Next() {
		req, err := scanBloodRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func (r *bloodRequestRepository) ListWithReceivers(ctx context.Context) ([]domain.BloodRequestWithReceiver, error) {
	query := `SELECT ` + requestColumns + `, u.name, u.email
        FROM blood_requests r
        JOIN users u ON u.id = r.receiver_user_id
        ORDER BY r.created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BloodRequestWithReceiver
	for rows.Next() {
		var (
			item     domain.BloodRequestWithReceiver
			lng, lat float64
		)
		if err := rows.Scan(
			&item.ID,
			&item.ReceiverID,
			&item.BloodGroup,
			&item.Units,
			&item.Urgency,
			&lng,
			&lat,
			&item.Status,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.ReceiverName,
			&item.ReceiverEmail,
		); err != nil {
			return nil, err
		}
		item.Location = domain.NewGeoPoint(lng, lat)
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *bloodRequestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) (*domain.BloodRequest, error) {
	const query = `
        UPDATE blood_requests r SET status=$1, updated_at=NOW()
        WHERE r.id=$2 AND r.status=$3
        RETURNING ` + requestColumns
	req, err := scanBloodRequest(r.db.QueryRow(ctx, query, to, id, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatusConflict
	}
	return req, err
}

func (r *bloodRequestRepository) CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM blood_requests WHERE status=$1`, status).Scan(&n)
	return n, err
}

func scanBloodRequest(row pgx.Row) (*domain.BloodRequest, error) {
	var (
		req      domain.BloodRequest
		lng, lat float64
	)
	if err := row.Scan(
		&req.ID,
		&req.ReceiverID,
		&req.BloodGroup,
		&req.Units,
		&req.Urgency,
		&lng,
		&lat,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	req.Location = domain.NewGeoPoint(lng, lat)
	return &req, nil
}
