package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// donorTracker reads and stamps donor profiles through one repository binding.
type donorTracker struct {
	donors repository.DonorRepository
}

func (t donorTracker) getByUser(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	profile, err := t.donors.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewProfileMissing(map[string]any{"userId": userID})
	}
	return profile, err
}

// lockByUser reads the profile and keeps it locked for the rest of the
// transaction, so concurrent approvals for one donor see each other's stamp.
func (t donorTracker) lockByUser(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	profile, err := t.donors.GetByUserIDForUpdate(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewProfileMissing(map[string]any{"userId": userID})
	}
	return profile, err
}

func (t donorTracker) updateLastDonationDate(ctx context.Context, userID string, date time.Time) error {
	err := t.donors.UpdateLastDonationDate(ctx, userID, date)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewProfileMissing(map[string]any{"userId": userID})
	}
	return err
}

// DonorService exposes donor profiles outside the approval path.
type DonorService struct {
	store repository.Store
}

// NewDonorService constructs the service.
func NewDonorService(store repository.Store) *DonorService {
	return &DonorService{store: store}
}

// GetByUser returns the profile owned by userID or PROFILE_MISSING.
func (s *DonorService) GetByUser(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	return donorTracker{donors: s.store.Repos().Donors}.getByUser(ctx, userID)
}

// UpdateLastDonationDate stamps the profile owned by userID.
func (s *DonorService) UpdateLastDonationDate(ctx context.Context, userID string, date time.Time) error {
	return donorTracker{donors: s.store.Repos().Donors}.updateLastDonationDate(ctx, userID, date)
}
