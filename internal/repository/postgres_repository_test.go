package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

var stamp = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func sql(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

var inventoryColumns = []string{"blood_group", "units", "last_updated"}

func TestInventoryRepository_IncrementUpsertsInOneStatement(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("ON CONFLICT (blood_group) DO UPDATE")+`\s+`+sql("SET units = inventory.units + EXCLUDED.units")).
		WithArgs(domain.BloodGroupOPos, 2).
		WillReturnRows(mock.NewRows(inventoryColumns).AddRow(domain.BloodGroupOPos, 7, stamp))

	rec, err := NewInventoryRepository(mock).Increment(context.Background(), domain.BloodGroupOPos, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.InventoryRecord{BloodGroup: domain.BloodGroupOPos, Units: 7, LastUpdated: stamp}, *rec)
}

func TestInventoryRepository_DecrementIsGuarded(t *testing.T) {
	mock := newMockPool(t)
	repo := NewInventoryRepository(mock)

	mock.ExpectQuery(sql("WHERE blood_group=$1 AND units >= $2")).
		WithArgs(domain.BloodGroupAPos, 3).
		WillReturnRows(mock.NewRows(inventoryColumns).AddRow(domain.BloodGroupAPos, 2, stamp))
	rec, err := repo.Decrement(context.Background(), domain.BloodGroupAPos, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Units)

	mock.ExpectQuery(sql("WHERE blood_group=$1 AND units >= $2")).
		WithArgs(domain.BloodGroupAPos, 5).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Decrement(context.Background(), domain.BloodGroupAPos, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestInventoryRepository_GetMissing(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("FROM inventory WHERE blood_group=$1")).
		WithArgs(domain.BloodGroupBNeg).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewInventoryRepository(mock).Get(context.Background(), domain.BloodGroupBNeg)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestInventoryRepository_ListInDisplayOrder(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("ORDER BY array_position(ARRAY['A+','A-','B+','B-','AB+','AB-','O+','O-'], blood_group)")).
		WillReturnRows(mock.NewRows(inventoryColumns).
			AddRow(domain.BloodGroupAPos, 4, stamp).
			AddRow(domain.BloodGroupONeg, 1, stamp))

	records, err := NewInventoryRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.BloodGroupAPos, records[0].BloodGroup)
	assert.Equal(t, domain.BloodGroupONeg, records[1].BloodGroup)
}

func TestAppointmentRepository_UpdateStatusIsConditional(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAppointmentRepository(mock)
	columns := []string{"id", "donor_user_id", "scheduled_at", "hospital", "location_lng", "location_lat", "status", "created_at", "updated_at"}

	mock.ExpectQuery(sql("WHERE a.id=$2 AND a.status=$3")).
		WithArgs(domain.AppointmentStatusCompleted, "appt-1", domain.AppointmentStatusPending).
		WillReturnRows(mock.NewRows(columns).AddRow(
			"appt-1", "donor-1", stamp, "City Hospital", 31.2, 30.0,
			domain.AppointmentStatusCompleted, stamp, stamp,
		))
	appt, err := repo.UpdateStatus(context.Background(), "appt-1", domain.AppointmentStatusPending, domain.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCompleted, appt.Status)
	assert.Equal(t, 31.2, appt.Location.Longitude())

	mock.ExpectQuery(sql("WHERE a.id=$2 AND a.status=$3")).
		WithArgs(domain.AppointmentStatusCompleted, "appt-1", domain.AppointmentStatusPending).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.UpdateStatus(context.Background(), "appt-1", domain.AppointmentStatusPending, domain.AppointmentStatusCompleted)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestBloodRequestRepository_UpdateStatusIsConditional(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBloodRequestRepository(mock)
	columns := []string{"id", "receiver_user_id", "blood_group", "units", "urgency", "location_lng", "location_lat", "status", "created_at", "updated_at"}

	mock.ExpectQuery(sql("WHERE r.id=$2 AND r.status=$3")).
		WithArgs(domain.RequestStatusApproved, "req-1", domain.RequestStatusPending).
		WillReturnRows(mock.NewRows(columns).AddRow(
			"req-1", "receiver-1", domain.BloodGroupOPos, 2, domain.UrgencyUrgent, 31.2, 30.0,
			domain.RequestStatusApproved, stamp, stamp,
		))
	req, err := repo.UpdateStatus(context.Background(), "req-1", domain.RequestStatusPending, domain.RequestStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, req.Status)
	assert.Equal(t, 2, req.Units)

	mock.ExpectQuery(sql("WHERE r.id=$2 AND r.status=$3")).
		WithArgs(domain.RequestStatusRejected, "req-1", domain.RequestStatusPending).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.UpdateStatus(context.Background(), "req-1", domain.RequestStatusPending, domain.RequestStatusRejected)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestDonorRepository_GetByUserIDForUpdateLocksRow(t *testing.T) {
	mock := newMockPool(t)
	last := stamp.AddDate(0, -4, 0)
	lng, lat := 31.2, 30.0
	columns := []string{"id", "user_id", "blood_group", "age", "weight_kg", "hemoglobin_level", "diseases", "eligible",
		"last_donation_date", "location_lng", "location_lat", "created_at", "updated_at"}

	mock.ExpectQuery(sql("FROM donor_profiles WHERE user_id=$1 FOR UPDATE")).
		WithArgs("user-1").
		WillReturnRows(mock.NewRows(columns).AddRow(
			"profile-1", "user-1", domain.BloodGroupABNeg, 30, 61.5, 13.2, []string{}, true,
			&last, &lng, &lat, stamp, stamp,
		))

	p, err := NewDonorRepository(mock).GetByUserIDForUpdate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BloodGroupABNeg, p.BloodGroup)
	require.NotNil(t, p.LastDonationDate)
	assert.True(t, p.LastDonationDate.Equal(last))
	require.NotNil(t, p.Location)
	assert.Equal(t, 30.0, p.Location.Latitude())
}

func TestDonorRepository_UpdateLastDonationDateMissingProfile(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(sql("UPDATE donor_profiles SET last_donation_date=$1")).
		WithArgs(stamp, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewDonorRepository(mock).UpdateLastDonationDate(context.Background(), "ghost", stamp)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(sql("INSERT INTO users (name, email, password_hash, role)")).
		WithArgs("Ada", "ada@example.com", "hash", domain.RoleDonor).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := NewUserRepository(mock).Create(context.Background(), &domain.User{
		Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: domain.RoleDonor,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}
