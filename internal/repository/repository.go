package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

var (
	// ErrStatusConflict is returned when a conditional status update finds the row no longer in the expected state.
	ErrStatusConflict = errors.New("status precondition failed")
	// ErrInsufficientStock is returned when a decrement would take units below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned on unique key violations.
	ErrDuplicate = errors.New("duplicate record")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// DonorRepository stores donor profiles keyed by user.
type DonorRepository interface {
	Create(ctx context.Context, profile *domain.DonorProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.DonorProfile, error)
	// GetByUserIDForUpdate also holds the row lock until the surrounding transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.DonorProfile, error)
	UpdateLastDonationDate(ctx context.Context, userID string, date time.Time) error
	Count(ctx context.Context) (int64, error)
}

// AppointmentRepository stores donation appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListByDonor(ctx context.Context, donorID string) ([]domain.Appointment, error)
	ListWithDonors(ctx context.Context) ([]domain.AppointmentWithDonor, error)
	// UpdateStatus moves the row from -> to only while it is still in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (*domain.Appointment, error)
}

// BloodRequestRepository stores receiver requests.
type BloodRequestRepository interface {
	Create(ctx context.Context, req *domain.BloodRequest) error
	GetByID(ctx context.Context, id string) (*domain.BloodRequest, error)
	ListByReceiver(ctx context.Context, receiverID string) ([]domain.BloodRequest, error)
	ListWithReceivers(ctx context.Context) ([]domain.BloodRequestWithReceiver, error)
	// UpdateStatus moves the row from -> to only while it is still in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.RequestStatus) (*domain.BloodRequest, error)
	CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error)
}

// InventoryRepository is the keyed unit counter behind the ledger.
type InventoryRepository interface {
	// Increment upserts the record and adds delta in one statement.
	Increment(ctx context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error)
	// Decrement subtracts delta only when enough units exist.
	Decrement(ctx context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error)
	Get(ctx context.Context, group domain.BloodGroup) (*domain.InventoryRecord, error)
	List(ctx context.Context) ([]domain.InventoryRecord, error)
	TotalUnits(ctx context.Context) (int64, error)
}

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Users        UserRepository
	Donors       DonorRepository
	Appointments AppointmentRepository
	Requests     BloodRequestRepository
	Inventory    InventoryRepository
}

// Store hands out repositories and runs multi-record work atomically.
type Store interface {
	Repos() Repositories
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
