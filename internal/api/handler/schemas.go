package handler

import "time"

// --- Account ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required,max=120"`
	Role     string `json:"role"     validate:"required,oneof=patient doctor"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Approved  bool      `json:"approved"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
	// Home is where the portal sends this account after login.
	Home string `json:"home,omitempty"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active pending suspended"`
}

type homeResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Area   string `json:"area"`
}

// --- Assignments ---

type assignmentRequest struct {
	DoctorID  string `json:"doctor_id"  validate:"required"`
	PatientID string `json:"patient_id" validate:"required"`
}

type assignmentResponse struct {
	ID        string    `json:"id"`
	DoctorID  string    `json:"doctor_id"`
	PatientID string    `json:"patient_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Appointments ---

type bookRequest struct {
	DoctorID string    `json:"doctor_id" validate:"required"`
	Slot     time.Time `json:"slot"`
	Reason   string    `json:"reason"    validate:"max=500"`
}

type cancelRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type transitionRequest struct {
	State string `json:"state" validate:"required,oneof=confirmed cancelled rescheduled"`
	Note  string `json:"note"  validate:"max=500"`
	// Slot is the new slot when State is rescheduled.
	Slot *time.Time `json:"slot,omitempty"`
}

type historyItem struct {
	State string    `json:"state"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}

type appointmentLinks struct {
	Self string `json:"self"`
}

type appointmentResponse struct {
	ID        string           `json:"id"`
	DoctorID  string           `json:"doctor_id"`
	PatientID string           `json:"patient_id"`
	Slot      time.Time        `json:"slot"`
	State     string           `json:"state"`
	Reason    string           `json:"reason,omitempty"`
	History   []historyItem    `json:"history"`
	Links     appointmentLinks `json:"_links"`
}
