package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/api/metrics"
	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/service"
)

// SessionCookie is the cookie browsers carry the session token in.
const SessionCookie = "session"

const (
	identityKey    = "identity"
	accessStateKey = "access_state"
)

// Evaluator is the per-request access check.
type Evaluator interface {
	Evaluate(ctx context.Context, credential, requestPath string) service.Verdict
}

// Gateway resolves the caller on every request and either lets it through or
// answers with a 303 redirect. The resolved identity is stored under
// "identity" for handlers; it is nil for anonymous callers.
func Gateway(gw Evaluator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			credential := Credential(req)

			v := gw.Evaluate(req.Context(), credential, req.URL.Path)
			if credential != "" {
				metrics.IdentityResolutionsTotal.WithLabelValues(resolutionResult(v.Reason)).Inc()
			}

			if !v.IsContinue() {
				metrics.GatewayDecisionsTotal.WithLabelValues(v.State.String(), "redirect").Inc()
				return c.Redirect(http.StatusSeeOther, v.Location())
			}
			metrics.GatewayDecisionsTotal.WithLabelValues(v.State.String(), "continue").Inc()

			c.Set(identityKey, v.Identity)
			c.Set(accessStateKey, v.State)
			return next(c)
		}
	}
}

// Credential extracts the session token from the Authorization bearer header,
// falling back to the session cookie. It returns "" when neither is present.
func Credential(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if ck, err := r.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

func resolutionResult(err error) string {
	switch {
	case err == nil, errors.Is(err, domain.ErrUnauthorized):
		return "resolved"
	case errors.Is(err, domain.ErrProfileMissing):
		return "profile_missing"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
