package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

// AdminHandler serves account administration. Changes apply to the target's
// next request; the gateway re-resolves identities every time.
type AdminHandler struct {
	accounts ports.AccountService
}

func NewAdminHandler(accounts ports.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// ApproveDoctor handles POST /admin/medicos/:id/aprobar.
//
// @Summary      Approve a pending doctor
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Doctor account id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/medicos/{id}/aprobar [post]
func (h *AdminHandler) ApproveDoctor(c echo.Context) error {
	if err := h.accounts.ApproveDoctor(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetStatus handles PUT /admin/usuarios/:id/estado.
//
// @Summary      Change an account's status
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string            true  "Account id"
// @Param        body  body  setStatusRequest  true  "New status"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/usuarios/{id}/estado [put]
func (h *AdminHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	if err := h.accounts.SetStatus(c.Request().Context(), c.Param("id"), domain.AccountStatus(req.Status)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
