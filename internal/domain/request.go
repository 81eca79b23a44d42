package domain

import "time"

// RequestStatus enumerates blood request states.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	// RequestStatusFulfilled is reserved; nothing transitions into it.
	RequestStatusFulfilled RequestStatus = "fulfilled"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:   {RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved:  {},
	RequestStatusRejected:  {},
	RequestStatusFulfilled: {},
}

// CanTransitionTo reports whether next is a legal edge from s.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return allowed(requestTransitions[s], next)
}

// Urgency is advisory and does not reorder processing.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	return u == UrgencyNormal || u == UrgencyUrgent
}

// BloodRequest is a receiver's request for units of one blood group.
type BloodRequest struct {
	ID         string
	ReceiverID string
	BloodGroup BloodGroup
	Units      int
	Urgency    Urgency
	Location   GeoPoint
	Status     RequestStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BloodRequestWithReceiver joins receiver details for admin listings.
type BloodRequestWithReceiver struct {
	BloodRequest
	ReceiverName  string
	ReceiverEmail string
}
