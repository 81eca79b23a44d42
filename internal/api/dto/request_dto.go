package dto

import (
	"time"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// CreateBloodRequestRequest payload.
type CreateBloodRequestRequest struct {
	BloodGroup string           `json:"bloodGroup" validate:"required,bloodgroup"`
	Units      int              `json:"units" validate:"gt=0"`
	Urgency    string           `json:"urgency" validate:"urgency"`
	Location   *GeoPointPayload `json:"location" validate:"required"`
}

// BloodRequestResponse represents one request.
type BloodRequestResponse struct {
	ID         string               `json:"id"`
	ReceiverID string               `json:"receiverId"`
	BloodGroup domain.BloodGroup    `json:"bloodGroup"`
	Units      int                  `json:"units"`
	Urgency    domain.Urgency       `json:"urgency"`
	Location   domain.GeoPoint      `json:"location"`
	Status     domain.RequestStatus `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// ReceiverSummary is joined into admin listings.
type ReceiverSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminBloodRequestResponse carries the receiver details.
type AdminBloodRequestResponse struct {
	BloodRequestResponse
	Receiver ReceiverSummary `json:"receiver"`
}

// StatsResponse aggregates dashboard counters.
type StatsResponse struct {
	Donors  int64 `json:"donors"`
	Units   int64 `json:"units"`
	Pending int64 `json:"pending"`
}

// NewBloodRequestResponse maps a request.
func NewBloodRequestResponse(r *domain.BloodRequest) BloodRequestResponse {
	return BloodRequestResponse{
		ID:         r.ID,
		ReceiverID: r.ReceiverID,
		BloodGroup: r.BloodGroup,
		Units:      r.Units,
		Urgency:    r.Urgency,
		Location:   r.Location,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// NewAdminBloodRequestResponse maps a joined request.
func NewAdminBloodRequestResponse(r *domain.BloodRequestWithReceiver) AdminBloodRequestResponse {
	return AdminBloodRequestResponse{
		BloodRequestResponse: NewBloodRequestResponse(&r.BloodRequest),
		Receiver:             ReceiverSummary{Name: r.ReceiverName, Email: r.ReceiverEmail},
	}
}
