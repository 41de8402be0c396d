package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/core/domain"
)

// ctxIdentity returns the identity the Gateway middleware resolved for this
// request. Routes behind the gateway always have one; a missing identity
// means the route was wired without it.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, _ := c.Get("identity").(*domain.Identity)
	if id == nil || id.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return id, nil
}
