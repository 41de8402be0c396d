package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/clinicportal/portal/internal/core/domain"
	"github.com/clinicportal/portal/internal/core/ports"
)

type stubAccounts struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.Session, error)
	logoutFn   func(ctx context.Context, token string) error
	approveFn  func(ctx context.Context, doctorID string) error
	statusFn   func(ctx context.Context, userID string, status domain.AccountStatus) error
}

func (s *stubAccounts) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccounts) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccounts) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAccounts) ApproveDoctor(ctx context.Context, doctorID string) error {
	return s.approveFn(ctx, doctorID)
}

func (s *stubAccounts) SetStatus(ctx context.Context, userID string, status domain.AccountStatus) error {
	return s.statusFn(ctx, userID, status)
}

type stubAssignments struct {
	adoptFn   func(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error)
	releaseFn func(ctx context.Context, doctorID, patientID string) error
}

func (s *stubAssignments) Adopt(ctx context.Context, doctorID, patientID string) (*domain.Assignment, error) {
	return s.adoptFn(ctx, doctorID, patientID)
}

func (s *stubAssignments) Release(ctx context.Context, doctorID, patientID string) error {
	return s.releaseFn(ctx, doctorID, patientID)
}

type stubBookings struct {
	bookFn       func(ctx context.Context, in ports.BookInput) (*domain.Appointment, error)
	transitionFn func(ctx context.Context, in ports.TransitionInput) (*domain.Appointment, error)
	getFn        func(ctx context.Context, id string) (*domain.Appointment, error)
}

func (s *stubBookings) Book(ctx context.Context, in ports.BookInput) (*domain.Appointment, error) {
	return s.bookFn(ctx, in)
}

func (s *stubBookings) Transition(ctx context.Context, in ports.TransitionInput) (*domain.Appointment, error) {
	return s.transitionFn(ctx, in)
}

func (s *stubBookings) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	return s.getFn(ctx, id)
}

// newContext builds an echo context with a JSON body and, when id is not nil,
// the identity the gateway would have stored.
func newContext(method, target string, body io.Reader, id *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		c.Set("identity", id)
	}
	return c, rec
}

func patientIdentity() *domain.Identity {
	return &domain.Identity{UserID: "pat", Role: domain.RolePatient, Status: domain.StatusActive}
}

func doctorIdentity() *domain.Identity {
	return &domain.Identity{UserID: "doc", Role: domain.RoleDoctor, Approved: true, Status: domain.StatusActive}
}
