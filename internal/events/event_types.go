package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentBooked    EventType = "appointment_booked"
	EventAppointmentCompleted EventType = "appointment_completed"
	EventAppointmentRejected  EventType = "appointment_rejected"
	EventRequestCreated       EventType = "request_created"
	EventRequestApproved      EventType = "request_approved"
	EventRequestRejected      EventType = "request_rejected"
	EventInventoryAdjusted    EventType = "inventory_adjusted"
)

// AllEventTypes lists every type a listener may subscribe to.
var AllEventTypes = []EventType{
	EventAppointmentBooked,
	EventAppointmentCompleted,
	EventAppointmentRejected,
	EventRequestCreated,
	EventRequestApproved,
	EventRequestRejected,
	EventInventoryAdjusted,
}

// TouchesInventory reports whether the event follows a committed stock change.
func (t EventType) TouchesInventory() bool {
	switch t {
	case EventAppointmentCompleted, EventRequestApproved, EventInventoryAdjusted:
		return true
	}
	return false
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, entityID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// AppointmentPayload payload.
type AppointmentPayload struct {
	DonorID  string                   `json:"donor_id"`
	Status   domain.AppointmentStatus `json:"status"`
	Hospital string                   `json:"hospital"`
	Date     time.Time                `json:"date"`
}

// RequestPayload payload.
type RequestPayload struct {
	ReceiverID string               `json:"receiver_id"`
	BloodGroup domain.BloodGroup    `json:"blood_group"`
	Units      int                  `json:"units"`
	Urgency    domain.Urgency       `json:"urgency"`
	Status     domain.RequestStatus `json:"status"`
}

// InventoryAdjustedPayload payload. Delta is signed.
type InventoryAdjustedPayload struct {
	BloodGroup domain.BloodGroup `json:"blood_group"`
	Delta      int               `json:"delta"`
	Units      int               `json:"units"`
}
