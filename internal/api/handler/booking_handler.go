package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/api/metrics"
	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// BookingHandler serves appointments. Patients book and cancel their own;
// doctors move their own through the state machine.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Book handles POST /paciente/citas.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookRequest  true  "Doctor, slot and reason"
// @Success      201   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /paciente/citas [post]
func (h *BookingHandler) Book(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	appt, err := h.service.Book(c.Request().Context(), ports.BookInput{
		DoctorID:  req.DoctorID,
		PatientID: id.UserID,
		Slot:      req.Slot,
		Reason:    req.Reason,
	})
	metrics.BookingsTotal.WithLabelValues(errorKind(err)).Inc()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, toAppointmentResponse(appt, patientLink(appt.ID)))
}

// GetOwn handles GET /paciente/citas/:id and GET /medico/citas/:id.
//
// @Summary      Get one of the caller's appointments
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  appointmentResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /paciente/citas/{id} [get]
func (h *BookingHandler) GetOwn(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	appt, err := h.ownAppointment(c, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt, selfLink(id, appt.ID)))
}

// CancelOwn handles POST /paciente/citas/:id/cancelar.
//
// @Summary      Cancel one of the caller's appointments
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true   "Appointment id"
// @Param        body  body      cancelRequest  false  "Optional note"
// @Success      200   {object}  appointmentResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /paciente/citas/{id}/cancelar [post]
func (h *BookingHandler) CancelOwn(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req cancelRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		}
		if err := c.Validate(&req); err != nil {
			return respondError(c, err)
		}
	}

	return h.transition(c, id, ports.TransitionInput{
		AppointmentID: c.Param("id"),
		NewState:      domain.AppointmentCancelled,
		Note:          req.Note,
	})
}

// Transition handles POST /medico/citas/:id/estado.
//
// @Summary      Change an appointment's state
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Appointment id"
// @Param        body  body      transitionRequest  true  "Target state, note and new slot when rescheduling"
// @Success      200   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /medico/citas/{id}/estado [post]
func (h *BookingHandler) Transition(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	return h.transition(c, id, ports.TransitionInput{
		AppointmentID: c.Param("id"),
		NewState:      domain.AppointmentState(req.State),
		Note:          req.Note,
		Slot:          req.Slot,
	})
}

func (h *BookingHandler) transition(c echo.Context, id *domain.Identity, in ports.TransitionInput) error {
	if _, err := h.ownAppointment(c, id); err != nil {
		metrics.AppointmentTransitionsTotal.WithLabelValues(string(in.NewState), errorKind(err)).Inc()
		return respondError(c, err)
	}

	appt, err := h.service.Transition(c.Request().Context(), in)
	metrics.AppointmentTransitionsTotal.WithLabelValues(string(in.NewState), errorKind(err)).Inc()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt, selfLink(id, appt.ID)))
}

// ownAppointment loads the :id appointment and checks that the caller is its
// patient or its doctor, depending on the caller's role.
func (h *BookingHandler) ownAppointment(c echo.Context, id *domain.Identity) (*domain.Appointment, error) {
	appt, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}

	var owner string
	switch id.Role {
	case domain.RolePatient:
		owner = appt.PatientID
	case domain.RoleDoctor:
		owner = appt.DoctorID
	}
	if owner != id.UserID {
		return nil, fmt.Errorf("%w: appointment %s belongs to another account", domain.ErrForbidden, appt.ID)
	}
	return appt, nil
}

func selfLink(id *domain.Identity, appointmentID string) string {
	if id.Role == domain.RoleDoctor {
		return "/medico/citas/" + appointmentID
	}
	return patientLink(appointmentID)
}

func patientLink(appointmentID string) string {
	return "/paciente/citas/" + appointmentID
}
