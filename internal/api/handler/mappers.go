package handler

import (
	"github.com/clinicportal/portal/internal/core/domain"
)

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Approved:  u.Approved,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func toAssignmentResponse(a *domain.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

func toAppointmentResponse(a *domain.Appointment, self string) appointmentResponse {
	history := make([]historyItem, 0, len(a.History))
	for _, h := range a.History {
		history = append(history, historyItem{State: string(h.State), Note: h.Note, At: h.At})
	}
	return appointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Slot:      a.Slot,
		State:     string(a.State),
		Reason:    a.Reason,
		History:   history,
		Links:     appointmentLinks{Self: self},
	}
}
