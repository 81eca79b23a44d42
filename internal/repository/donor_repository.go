package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

type donorRepository struct {
	db DBTX
}

// NewDonorRepository instantiates the repository.
func NewDonorRepository(db DBTX) DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) Create(ctx context.Context, p *domain.DonorProfile) error {
	const query = `
        INSERT INTO donor_profiles (user_id, blood_group, age, weight_kg, hemoglobin_level, diseases, eligible,
            last_donation_date, location_lng, location_lat)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	lng, lat := pointColumns(p.Location)
	diseases := p.Diseases
	if diseases == nil {
		diseases = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		p.UserID,
		p.BloodGroup,
		p.Age,
		p.Weight,
		p.HemoglobinLevel,
		diseases,
		p.Eligible,
		p.LastDonationDate,
		lng,
		lat,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translateWriteError(err)
}

const selectDonorProfile = `
        SELECT id, user_id, blood_group, age, weight_kg, hemoglobin_level, diseases, eligible,
               last_donation_date, location_lng, location_lat, created_at, updated_at
        FROM donor_profiles WHERE user_id=$1`

func (r *donorRepository) GetByUserID(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	return scanDonorProfile(r.db.QueryRow(ctx, selectDonorProfile, userID))
}

func (r *donorRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	return scanDonorProfile(r.db.QueryRow(ctx, selectDonorProfile+" FOR UPDATE", userID))
}

func scanDonorProfile(row pgx.Row) (*domain.DonorProfile, error) {
	var (
		p        domain.DonorProfile
		lng, lat *float64
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BloodGroup,
		&p.Age,
		&p.Weight,
		&p.HemoglobinLevel,
		&p.Diseases,
		&p.Eligible,
		&p.LastDonationDate,
		&lng,
		&lat,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lng != nil && lat != nil {
		pt := domain.NewGeoPoint(*lng, *lat)
		p.Location = &pt
	}
	return &p, nil
}

func (r *donorRepository) UpdateLastDonationDate(ctx context.Context, userID string, date time.Time) error {
	const query = `
        UPDATE donor_profiles SET last_donation_date=$1, updated_at=NOW()
        WHERE user_id=$2`
	cmd, err := r.db.Exec(ctx, query, date, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *donorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM donor_profiles`).Scan(&n)
	return n, err
}

func pointColumns(p *domain.GeoPoint) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lng, lat := p.Longitude(), p.Latitude()
	return &lng, &lat
}
