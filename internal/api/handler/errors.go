package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps a domain error to its HTTP status and client-facing message.
// ok is false for errors the caller should treat as internal.
func StatusFor(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists", true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error(), true
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, domain.ErrAccountSuspended):
		return http.StatusForbidden, "account suspended", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", true
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", true
	case errors.Is(err, domain.ErrStorageTransient):
		return http.StatusServiceUnavailable, "service temporarily unavailable", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

// errorKind is the metrics label for an operation outcome.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrStorageTransient):
		return "unavailable"
	default:
		return "error"
	}
}

// respondError writes the mapped error. Unmapped errors are returned to Echo
// so the central error handler logs them.
func respondError(c echo.Context, err error) error {
	code, msg, ok := StatusFor(err)
	if !ok {
		return err
	}
	return c.JSON(code, errorResponse{Error: msg})
}
