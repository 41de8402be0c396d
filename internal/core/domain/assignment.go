package domain

import "time"

// Assignment represents "doctor treats patient". At most one active row may
// exist per (DoctorID, PatientID) pair; several doctors may treat the same patient.
type Assignment struct {
	ID         string     `json:"id"`
	DoctorID   string     `json:"doctor_id"`
	PatientID  string     `json:"patient_id"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}
