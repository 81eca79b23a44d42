package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/eligibility"
	"github.com/spec-kit/bloodbank-service/internal/events"
	"github.com/spec-kit/bloodbank-service/internal/observability"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// AppointmentService drives donation appointments from booking to completion.
type AppointmentService struct {
	store   repository.Store
	metrics *observability.Metrics
	logger  *zap.Logger
	now     Clock
	publisher
}

// AppointmentDependencies bundles collaborators for the appointment service.
type AppointmentDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      Clock
}

// AppointmentCreateInput describes a booking.
type AppointmentCreateInput struct {
	Date     time.Time
	Hospital string
	Location *domain.GeoPoint
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	logger := orNop(deps.Logger)
	return &AppointmentService{
		store:     deps.Store,
		metrics:   deps.Metrics,
		logger:    logger,
		now:       orSystemClock(deps.Clock),
		publisher: publisher{dispatcher: deps.Dispatcher, logger: logger},
	}
}

// Create books a pending appointment for an eligible donor. Inventory and the
// donor profile are untouched.
func (s *AppointmentService) Create(ctx context.Context, donorID string, input AppointmentCreateInput) (*domain.Appointment, error) {
	hospital := strings.TrimSpace(input.Hospital)
	if hospital == "" {
		return nil, apperrors.NewValidationError("hospital is required", map[string]any{"hospital": "required"})
	}
	if input.Location == nil {
		return nil, apperrors.NewValidationError("location is required", map[string]any{"location": "required"})
	}
	if err := input.Location.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"location": "invalid"})
	}
	if input.Date.IsZero() {
		return nil, apperrors.NewValidationError("date is required", map[string]any{"date": "required"})
	}

	repos := s.store.Repos()
	profile, err := donorTracker{donors: repos.Donors}.getByUser(ctx, donorID)
	if err != nil {
		return nil, err
	}

	result := eligibility.Appointment.Evaluate(eligibility.Input{
		Age:                   profile.Age,
		Weight:                profile.Weight,
		HemoglobinLevel:       profile.HemoglobinLevel,
		Diseases:              profile.Diseases,
		DaysSinceLastDonation: profile.DaysSinceLastDonation(s.now()),
	})
	if !result.Eligible {
		s.logger.Info("appointment refused", zap.String("donor_id", donorID), zap.String("reason", result.Reason))
		return nil, apperrors.NewNotEligible(result.Reason)
	}

	appt := &domain.Appointment{
		DonorID:  donorID,
		Date:     input.Date.UTC(),
		Hospital: hospital,
		Location: *input.Location,
		Status:   domain.AppointmentStatusPending,
	}
	if err := repos.Appointments.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked", zap.String("appointment_id", appt.ID), zap.String("donor_id", donorID))
	s.publish(ctx, events.NewEvent(events.EventAppointmentBooked, appt.ID, donorID, appointmentPayload(appt)))
	return appt, nil
}

// Approve completes a pending appointment. The status claim, the one-unit
// credit and the donor's last-donation stamp commit together.
func (s *AppointmentService) Approve(ctx context.Context, adminID, appointmentID string) (*domain.Appointment, error) {
	var (
		completed *domain.Appointment
		group     domain.BloodGroup
		units     int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		appt, err := s.loadPending(ctx, repos, appointmentID, domain.AppointmentStatusCompleted)
		if err != nil {
			return err
		}

		tracker := donorTracker{donors: repos.Donors}
		profile, err := tracker.lockByUser(ctx, appt.DonorID)
		if err != nil {
			return err
		}
		if !profile.BloodGroup.Valid() {
			return apperrors.NewBloodGroupMissing(map[string]any{"donorId": appt.DonorID})
		}
		if profile.LastDonationDate != nil {
			gap := domain.DaysBetween(*profile.LastDonationDate, appt.Date)
			if res := eligibility.Appointment.CheckGap(&gap); !res.Eligible {
				return apperrors.NewNotEligible(res.Reason)
			}
		}

		completed, err = s.claim(ctx, repos, appt, domain.AppointmentStatusCompleted)
		if err != nil {
			return err
		}
		rec, err := ledger{inventory: repos.Inventory}.credit(ctx, profile.BloodGroup, 1)
		if err != nil {
			return err
		}
		if err := tracker.updateLastDonationDate(ctx, appt.DonorID, appt.Date); err != nil {
			return err
		}
		group, units = profile.BloodGroup, rec.Units
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCredit(ctx, string(group), 1)
	s.metrics.RecordTransition(ctx, "appointment", string(domain.AppointmentStatusCompleted))
	s.logger.Info("appointment completed",
		zap.String("appointment_id", completed.ID),
		zap.String("blood_group", string(group)),
		zap.Int("units", units))
	s.publish(ctx, events.NewEvent(events.EventAppointmentCompleted, completed.ID, adminID, appointmentPayload(completed)))
	return completed, nil
}

// Reject closes a pending appointment with no inventory or profile effect.
func (s *AppointmentService) Reject(ctx context.Context, adminID, appointmentID string) (*domain.Appointment, error) {
	var rejected *domain.Appointment
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		appt, err := s.loadPending(ctx, repos, appointmentID, domain.AppointmentStatusRejected)
		if err != nil {
			return err
		}
		rejected, err = s.claim(ctx, repos, appt, domain.AppointmentStatusRejected)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(ctx, "appointment", string(domain.AppointmentStatusRejected))
	s.logger.Info("appointment rejected", zap.String("appointment_id", rejected.ID))
	s.publish(ctx, events.NewEvent(events.EventAppointmentRejected, rejected.ID, adminID, appointmentPayload(rejected)))
	return rejected, nil
}

// ListMine returns the donor's own appointments, newest first.
func (s *AppointmentService) ListMine(ctx context.Context, donorID string) ([]domain.Appointment, error) {
	return s.store.Repos().Appointments.ListByDonor(ctx, donorID)
}

// ListAll returns every appointment joined with donor details.
func (s *AppointmentService) ListAll(ctx context.Context) ([]domain.AppointmentWithDonor, error) {
	return s.store.Repos().Appointments.ListWithDonors(ctx)
}

func (s *AppointmentService) loadPending(ctx context.Context, repos repository.Repositories, id string, next domain.AppointmentStatus) (*domain.Appointment, error) {
	appt, err := repos.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "appointment", id)
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, apperrors.NewAlreadyProcessed("appointment", map[string]any{"id": id, "status": appt.Status})
	}
	return appt, nil
}

// claim moves appt out of its current status only if no one else has.
func (s *AppointmentService) claim(ctx context.Context, repos repository.Repositories, appt *domain.Appointment, next domain.AppointmentStatus) (*domain.Appointment, error) {
	updated, err := repos.Appointments.UpdateStatus(ctx, appt.ID, appt.Status, next)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, apperrors.NewAlreadyProcessed("appointment", map[string]any{"id": appt.ID})
	}
	return updated, err
}

func appointmentPayload(appt *domain.Appointment) events.AppointmentPayload {
	return events.AppointmentPayload{
		DonorID:  appt.DonorID,
		Status:   appt.Status,
		Hospital: appt.Hospital,
		Date:     appt.Date,
	}
}
