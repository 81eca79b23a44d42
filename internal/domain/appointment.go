package domain

import "time"

// AppointmentStatus enumerates donation appointment states.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Only admin-driven edges are listed; cancelled belongs to a donor path not handled here.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusCompleted, AppointmentStatusRejected},
	AppointmentStatusCompleted: {},
	AppointmentStatusRejected:  {},
	AppointmentStatusCancelled: {},
}

// CanTransitionTo reports whether next is a legal edge from s.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return allowed(appointmentTransitions[s], next)
}

// Appointment is a donor's booked donation slot.
type Appointment struct {
	ID        string
	DonorID   string
	Date      time.Time
	Hospital  string
	Location  GeoPoint
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentWithDonor joins donor details for admin listings.
type AppointmentWithDonor struct {
	Appointment
	DonorName        string
	DonorEmail       string
	BloodGroup       *BloodGroup
	LastDonationDate *time.Time
}

func allowed[S comparable](edges []S, next S) bool {
	for _, candidate := range edges {
		if candidate == next {
			return true
		}
	}
	return false
}
