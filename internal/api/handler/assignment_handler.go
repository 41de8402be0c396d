package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/api/metrics"
	"github.com/clinicportal/portal/internal/core/ports"
)

// AssignmentHandler exposes adopt and release to doctors, for their own
// patients, and to admins, for any pair.
type AssignmentHandler struct {
	service ports.AssignmentService
}

func NewAssignmentHandler(service ports.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Adopt handles POST /medico/pacientes/:patient_id.
//
// @Summary      Adopt a patient
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        patient_id  path      string  true  "Patient account id"
// @Success      201         {object}  assignmentResponse
// @Failure      400         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Failure      503         {object}  errorResponse
// @Router       /medico/pacientes/{patient_id} [post]
func (h *AssignmentHandler) Adopt(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return h.adopt(c, id.UserID, c.Param("patient_id"))
}

// Release handles DELETE /medico/pacientes/:patient_id.
//
// @Summary      Release a patient
// @Tags         assignments
// @Security     BearerAuth
// @Param        patient_id  path  string  true  "Patient account id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /medico/pacientes/{patient_id} [delete]
func (h *AssignmentHandler) Release(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return h.release(c, id.UserID, c.Param("patient_id"))
}

// AdminAdopt handles POST /admin/asignaciones.
//
// @Summary      Assign a patient to a doctor
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignmentRequest  true  "Doctor and patient ids"
// @Success      201   {object}  assignmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/asignaciones [post]
func (h *AssignmentHandler) AdminAdopt(c echo.Context) error {
	var req assignmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	return h.adopt(c, req.DoctorID, req.PatientID)
}

// AdminRelease handles DELETE /admin/asignaciones.
//
// @Summary      End a doctor–patient assignment
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  assignmentRequest  true  "Doctor and patient ids"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Router       /admin/asignaciones [delete]
func (h *AssignmentHandler) AdminRelease(c echo.Context) error {
	var req assignmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	return h.release(c, req.DoctorID, req.PatientID)
}

func (h *AssignmentHandler) adopt(c echo.Context, doctorID, patientID string) error {
	a, err := h.service.Adopt(c.Request().Context(), doctorID, patientID)
	metrics.AssignmentOperationsTotal.WithLabelValues("adopt", errorKind(err)).Inc()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toAssignmentResponse(a))
}

func (h *AssignmentHandler) release(c echo.Context, doctorID, patientID string) error {
	err := h.service.Release(c.Request().Context(), doctorID, patientID)
	metrics.AssignmentOperationsTotal.WithLabelValues("release", errorKind(err)).Inc()
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
