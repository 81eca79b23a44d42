package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

const appointmentColumns = `a.id, a.donor_user_id, a.scheduled_at, a.hospital, a.location_lng, a.location_lat,
               a.status, a.created_at, a.updated_at`

type appointmentRepository struct {
	db DBTX
}

// NewAppointmentRepository instantiates the repository.
func NewAppointmentRepository(db DBTX) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (donor_user_id, scheduled_at, hospital, location_lng, location_lat, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		appt.DonorID,
		appt.Date,
		appt.Hospital,
		appt.Location.Longitude(),
		appt.Location.Latitude(),
		appt.Status,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id=$1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *appointmentRepository) ListByDonor(ctx context.Context, donorID string) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.donor_user_id=$1 ORDER BY a.scheduled_at DESC`
	rows, err := r.db.Query(ctx, query, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *appt)
	}
	return result, rows.Err()
}

func (r *appointmentRepository) ListWithDonors(ctx context.Context) ([]domain.AppointmentWithDonor, error) {
	query := `SELECT ` + appointmentColumns + `, u.name, u.email, d.blood_group, d.last_donation_date
        FROM appointments a
        JOIN users u ON u.id = a.donor_user_id
        LEFT JOIN donor_profiles d ON d.user_id = a.donor_user_id
        ORDER BY a.scheduled_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AppointmentWithDonor
	for rows.Next() {
		var (
			item     domain.AppointmentWithDonor
			lng, lat float64
		)
		if err := rows.Scan(
			&item.ID,
			&item.DonorID,
			&item.Date,
			&item.Hospital,
			&lng,
			&lat,
			&item.Status,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.DonorName,
			&item.DonorEmail,
			&item.BloodGroup,
			&item.LastDonationDate,
		); err != nil {
			return nil, err
		}
		item.Location = domain.NewGeoPoint(lng, lat)
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (*domain.Appointment, error) {
	const query = `
        UPDATE appointments a SET status=$1, updated_at=NOW()
        WHERE a.id=$2 AND a.status=$3
        RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, to, id, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatusConflict
	}
	return appt, err
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		appt     domain.Appointment
		lng, lat float64
	)
	if err := row.Scan(
		&appt.ID,
		&appt.DonorID,
		&appt.Date,
		&appt.Hospital,
		&lng,
		&lat,
		&appt.Status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	appt.Location = domain.NewGeoPoint(lng, lat)
	return &appt, nil
}
