package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/api/middleware"
	"github.com/clinicportal/portal/internal/core/access"
	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountService
	// secureCookie marks the session cookie Secure outside development.
	secureCookie bool
}

func NewAccountHandler(accounts ports.AccountService, secureCookie bool) *AccountHandler {
	return &AccountHandler{accounts: accounts, secureCookie: secureCookie}
}

// Register creates a new patient or doctor account. Doctors start pending
// until an admin approves them.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	user, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user)})
}

// Login authenticates an account and returns a session token. The token is
// also set as the session cookie for browser clients.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	session, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, authResponse{
		Token: session.Token,
		User:  toUserResponse(session.User),
		Home:  access.Home(access.StateOf(session.User.Identity())),
	})
}

// Logout revokes the caller's session token and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      503  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	token := middleware.Credential(c.Request())
	if token != "" {
		if err := h.accounts.Logout(c.Request().Context(), token); err != nil {
			return respondError(c, err)
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}
