package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/core/access"
)

// HomeHandler answers the landing page of each area with the caller's
// resolved identity.
type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home handles GET /paciente, /medico, /medico/pending and /admin.
//
// @Summary      Area landing page
// @Tags         home
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  homeResponse
// @Success      303
// @Router       /paciente [get]
func (h *HomeHandler) Home(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, homeResponse{
		UserID: id.UserID,
		Role:   string(id.Role),
		Status: string(id.Status),
		Area:   access.Home(access.StateOf(id)),
	})
}
