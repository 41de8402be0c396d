package domain

import "time"

// AppointmentState represents the lifecycle state of an appointment.
type AppointmentState string

const (
	AppointmentPending     AppointmentState = "pending"
	AppointmentConfirmed   AppointmentState = "confirmed"
	AppointmentCancelled   AppointmentState = "cancelled"
	AppointmentRescheduled AppointmentState = "rescheduled"
)

// validTransitions defines the allowed state machine transitions. States with
// no entry (cancelled, rescheduled) accept no further transitions.
var validTransitions = map[AppointmentState][]AppointmentState{
	AppointmentPending:   {AppointmentConfirmed, AppointmentCancelled, AppointmentRescheduled},
	AppointmentConfirmed: {AppointmentCancelled},
}

// Valid reports whether s is one of the known appointment states.
func (s AppointmentState) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled, AppointmentRescheduled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current state to next is valid.
func (s AppointmentState) CanTransitionTo(next AppointmentState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsSlot reports whether an appointment in this state occupies its doctor's slot.
func (s AppointmentState) HoldsSlot() bool {
	return s != AppointmentCancelled
}

// HistoryEntry records a single state transition on an appointment.
type HistoryEntry struct {
	State AppointmentState `json:"state" bson:"state"`
	Note  string           `json:"note,omitempty" bson:"note,omitempty"`
	At    time.Time        `json:"at" bson:"at"`
}

// Appointment is a patient's booking against one of a doctor's slots.
type Appointment struct {
	ID        string           `json:"id"`
	DoctorID  string           `json:"doctor_id"`
	PatientID string           `json:"patient_id"`
	Slot      time.Time        `json:"slot"`
	State     AppointmentState `json:"state"`
	Reason    string           `json:"reason"`
	History   []HistoryEntry   `json:"history"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NormalizeSlot maps a slot onto the representation every store compares on:
// UTC with millisecond precision.
func NormalizeSlot(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
