package dto

import (
	"time"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// CreateAppointmentRequest payload.
type CreateAppointmentRequest struct {
	Date     string           `json:"date" validate:"required"`
	Hospital string           `json:"hospital" validate:"required,max=200"`
	Location *GeoPointPayload `json:"location" validate:"required"`
}

// AppointmentResponse represents one appointment.
type AppointmentResponse struct {
	ID        string                   `json:"id"`
	DonorID   string                   `json:"donorId"`
	Date      time.Time                `json:"date"`
	Hospital  string                   `json:"hospital"`
	Location  domain.GeoPoint          `json:"location"`
	Status    domain.AppointmentStatus `json:"status"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// DonorSummary is joined into admin listings.
type DonorSummary struct {
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	BloodGroup       *domain.BloodGroup `json:"bloodGroup"`
	LastDonationDate *time.Time         `json:"lastDonationDate"`
}

// AdminAppointmentResponse carries the donor details.
type AdminAppointmentResponse struct {
	AppointmentResponse
	Donor DonorSummary `json:"donor"`
}

// NewAppointmentResponse maps an appointment.
func NewAppointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DonorID:   a.DonorID,
		Date:      a.Date,
		Hospital:  a.Hospital,
		Location:  a.Location,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewAdminAppointmentResponse maps a joined appointment.
func NewAdminAppointmentResponse(a *domain.AppointmentWithDonor) AdminAppointmentResponse {
	return AdminAppointmentResponse{
		AppointmentResponse: NewAppointmentResponse(&a.Appointment),
		Donor: DonorSummary{
			Name:             a.DonorName,
			Email:            a.DonorEmail,
			BloodGroup:       a.BloodGroup,
			LastDonationDate: a.LastDonationDate,
		},
	}
}
