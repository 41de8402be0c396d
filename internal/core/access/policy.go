// Package access holds the portal's access policy: a pure function from the
// caller's state and the requested path to either Continue or a redirect.
//
// Nothing here is cached. Callers derive the State from an identity resolved
// for the current request and pass it in explicitly.
package access

import (
	"path"
	"strings"

	"github.com/clinicportal/portal/internal/core/domain"
)

// State is the closed set of caller states the policy distinguishes.
type State int

const (
	Anonymous State = iota
	PatientActive
	DoctorPending
	DoctorApproved
	Admin

	// invalid marks an identity whose role matched no known state.
	invalid State = -1
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case PatientActive:
		return "patient_active"
	case DoctorPending:
		return "doctor_pending"
	case DoctorApproved:
		return "doctor_approved"
	case Admin:
		return "admin"
	default:
		return "invalid"
	}
}

// Well-known locations.
const (
	LoginPath         = "/login"
	PatientHome       = "/paciente"
	DoctorHome        = "/medico"
	DoctorPendingHome = "/medico/pending"
	AdminHome         = "/admin"
)

// publicPrefixes are reachable in every state. "/" itself is matched exactly.
var publicPrefixes = []string{
	LoginPath,
	"/register",
	"/auth",
	"/health",
	"/metrics",
	"/swagger",
}

// Decision is exactly one of Continue or RedirectTo.
type Decision struct {
	location string
}

// Continue lets the request through.
func Continue() Decision { return Decision{} }

// RedirectTo sends the caller elsewhere.
func RedirectTo(location string) Decision { return Decision{location: location} }

// IsContinue reports whether the request may proceed.
func (d Decision) IsContinue() bool { return d.location == "" }

// Location is the redirect target, empty for Continue.
func (d Decision) Location() string { return d.location }

func (d Decision) String() string {
	if d.IsContinue() {
		return "continue"
	}
	return "redirect:" + d.location
}

// StateOf classifies a resolved identity. A nil identity or a suspended
// account is anonymous.
func StateOf(id *domain.Identity) State {
	if id == nil || id.Status == domain.StatusSuspended {
		return Anonymous
	}
	switch id.Role {
	case domain.RolePatient:
		return PatientActive
	case domain.RoleDoctor:
		if id.Approved {
			return DoctorApproved
		}
		return DoctorPending
	case domain.RoleAdmin:
		return Admin
	default:
		return invalid
	}
}

// Home returns the landing location for a state.
func Home(s State) string {
	switch s {
	case PatientActive:
		return PatientHome
	case DoctorPending:
		return DoctorPendingHome
	case DoctorApproved:
		return DoctorHome
	case Admin:
		return AdminHome
	default:
		return LoginPath
	}
}

// Evaluate decides whether a caller in state s may reach requestPath.
func Evaluate(s State, requestPath string) Decision {
	p := Normalize(requestPath)
	if IsPublic(p) {
		return Continue()
	}

	switch s {
	case Anonymous:
		return RedirectTo(LoginPath)
	case PatientActive:
		return allowUnder(p, PatientHome)
	case DoctorPending:
		if p == DoctorPendingHome {
			return Continue()
		}
		return RedirectTo(DoctorPendingHome)
	case DoctorApproved:
		return allowUnder(p, DoctorHome)
	case Admin:
		return allowUnder(p, AdminHome)
	default:
		return RedirectTo(LoginPath)
	}
}

// allowUnder continues when p lies in the subtree rooted at home and
// otherwise redirects to home.
func allowUnder(p, home string) Decision {
	if Under(p, home) {
		return Continue()
	}
	return RedirectTo(home)
}

// IsPublic reports whether a normalized path is reachable without a session.
func IsPublic(p string) bool {
	if p == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if Under(p, prefix) {
			return true
		}
	}
	return false
}

// Under reports whether p equals prefix or lies below it. Matching is per
// path segment, so "/medicos" is not under "/medico".
func Under(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// Normalize cleans a request path so that dot segments and repeated slashes
// cannot move a request across subtrees.
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
