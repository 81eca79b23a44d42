package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/events"
	"github.com/spec-kit/bloodbank-service/internal/observability"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// RequestService drives receiver blood requests from submission to resolution.
type RequestService struct {
	store   repository.Store
	metrics *observability.Metrics
	logger  *zap.Logger
	publisher
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// RequestCreateInput describes a new blood request.
type RequestCreateInput struct {
	BloodGroup domain.BloodGroup
	Units      int
	Urgency    domain.Urgency
	Location   *domain.GeoPoint
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	logger := orNop(deps.Logger)
	return &RequestService{
		store:     deps.Store,
		metrics:   deps.Metrics,
		logger:    logger,
		publisher: publisher{dispatcher: deps.Dispatcher, logger: logger},
	}
}

// Create records a pending request. Receivers are not health-screened.
func (s *RequestService) Create(ctx context.Context, receiverID string, input RequestCreateInput) (*domain.BloodRequest, error) {
	if !input.BloodGroup.Valid() {
		return nil, apperrors.NewValidationError("invalid blood group", map[string]any{"bloodGroup": input.BloodGroup})
	}
	if input.Units <= 0 {
		return nil, apperrors.NewValidationError("units must be a positive integer", map[string]any{"units": input.Units})
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	if !urgency.Valid() {
		return nil, apperrors.NewValidationError("invalid urgency", map[string]any{"urgency": urgency})
	}
	if input.Location == nil {
		return nil, apperrors.NewValidationError("location is required", map[string]any{"location": "required"})
	}
	if err := input.Location.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"location": "invalid"})
	}

	req := &domain.BloodRequest{
		ReceiverID: receiverID,
		BloodGroup: input.BloodGroup,
		Units:      input.Units,
		Urgency:    urgency,
		Location:   *input.Location,
		Status:     domain.RequestStatusPending,
	}
	if err := s.store.Repos().Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("blood request created",
		zap.String("request_id", req.ID),
		zap.String("blood_group", string(req.BloodGroup)),
		zap.Int("units", req.Units))
	s.publish(ctx, events.NewEvent(events.EventRequestCreated, req.ID, receiverID, requestPayload(req)))
	return req, nil
}

// Approve fulfils a pending request from stock. When stock is short the
// transaction rolls back and the request stays pending.
func (s *RequestService) Approve(ctx context.Context, adminID, requestID string) (*domain.BloodRequest, error) {
	var approved *domain.BloodRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		req, err := s.loadPending(ctx, repos, requestID, domain.RequestStatusApproved)
		if err != nil {
			return err
		}
		approved, err = s.claim(ctx, repos, req, domain.RequestStatusApproved)
		if err != nil {
			return err
		}
		_, err = ledger{inventory: repos.Inventory}.debit(ctx, req.BloodGroup, req.Units)
		return err
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInsufficientStock) {
			s.logger.Info("blood request left pending", zap.String("request_id", requestID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.RecordDebit(ctx, string(approved.BloodGroup), approved.Units)
	s.metrics.RecordTransition(ctx, "request", string(domain.RequestStatusApproved))
	s.logger.Info("blood request approved",
		zap.String("request_id", approved.ID),
		zap.String("blood_group", string(approved.BloodGroup)),
		zap.Int("units", approved.Units))
	s.publish(ctx, events.NewEvent(events.EventRequestApproved, approved.ID, adminID, requestPayload(approved)))
	return approved, nil
}

// Reject closes a pending request with no inventory effect.
func (s *RequestService) Reject(ctx context.Context, adminID, requestID string) (*domain.BloodRequest, error) {
	var rejected *domain.BloodRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		req, err := s.loadPending(ctx, repos, requestID, domain.RequestStatusRejected)
		if err != nil {
			return err
		}
		rejected, err = s.claim(ctx, repos, req, domain.RequestStatusRejected)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(ctx, "request", string(domain.RequestStatusRejected))
	s.logger.Info("blood request rejected", zap.String("request_id", rejected.ID))
	s.publish(ctx, events.NewEvent(events.EventRequestRejected, rejected.ID, adminID, requestPayload(rejected)))
	return rejected, nil
}

// ListMine returns the receiver's own requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, receiverID string) ([]domain.BloodRequest, error) {
	return s.store.Repos().Requests.ListByReceiver(ctx, receiverID)
}

// ListAll returns every request joined with receiver details.
func (s *RequestService) ListAll(ctx context.Context) ([]domain.BloodRequestWithReceiver, error) {
	return s.store.Repos().Requests.ListWithReceivers(ctx)
}

// Stats aggregates the admin dashboard counters.
func (s *RequestService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	repos := s.store.Repos()
	donors, err := repos.Donors.Count(ctx)
	if err != nil {
		return nil, err
	}
	units, err := repos.Inventory.TotalUnits(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := repos.Requests.CountByStatus(ctx, domain.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	return &domain.AdminStats{Donors: donors, Units: units, Pending: pending}, nil
}

func (s *RequestService) loadPending(ctx context.Context, repos repository.Repositories, id string, next domain.RequestStatus) (*domain.BloodRequest, error) {
	req, err := repos.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "blood request", id)
	}
	if !req.Status.CanTransitionTo(next) {
		return nil, apperrors.NewAlreadyProcessed("blood request", map[string]any{"id": id, "status": req.Status})
	}
	return req, nil
}

func (s *RequestService) claim(ctx context.Context, repos repository.Repositories, req *domain.BloodRequest, next domain.RequestStatus) (*domain.BloodRequest, error) {
	updated, err := repos.Requests.UpdateStatus(ctx, req.ID, req.Status, next)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, apperrors.NewAlreadyProcessed("blood request", map[string]any{"id": req.ID})
	}
	return updated, err
}

func requestPayload(req *domain.BloodRequest) events.RequestPayload {
	return events.RequestPayload{
		ReceiverID: req.ReceiverID,
		BloodGroup: req.BloodGroup,
		Units:      req.Units,
		Urgency:    req.Urgency,
		Status:     req.Status,
	}
}
