package domain

import "time"

// EventType names a notification emitted after a successful write.
type EventType string

const (
	EventAssignmentCreated       EventType = "assignment.created"
	EventAssignmentReleased      EventType = "assignment.released"
	EventAppointmentBooked       EventType = "appointment.booked"
	EventAppointmentStateChanged EventType = "appointment.state_changed"
)

// Event is a best-effort notification. Losing one never rolls back the write
// that produced it.
type Event struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	AggregateID string            `json:"aggregate_id"`
	Payload     map[string]string `json:"payload,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}
