package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clinicportal/portal/docs"
	"github.com/clinicportal/portal/internal/api/handler"
	"github.com/clinicportal/portal/internal/api/middleware"
	"github.com/clinicportal/portal/internal/core/ports"
)

// Deps are the services and probes the router wires into handlers.
type Deps struct {
	Gateway     middleware.Evaluator
	Accounts    ports.AccountService
	Assignments ports.AssignmentService
	Bookings    ports.BookingService
	// Ready lists the stores /health/ready pings, keyed by name.
	Ready map[string]handler.Pinger
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every route passes through the gateway; public paths are let through by the
// access policy itself.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("portal"))
	e.Use(middleware.Gateway(d.Gateway))

	// --- Handlers ---
	accountHandler := handler.NewAccountHandler(d.Accounts, d.SecureCookie)
	adminHandler := handler.NewAdminHandler(d.Accounts)
	assignmentHandler := handler.NewAssignmentHandler(d.Assignments)
	bookingHandler := handler.NewBookingHandler(d.Bookings)
	homeHandler := handler.NewHomeHandler()

	// --- Auth routes ---
	e.POST("/auth/register", accountHandler.Register)
	e.POST("/auth/login", accountHandler.Login)
	e.POST("/auth/logout", accountHandler.Logout)

	// --- Patient area ---
	e.GET("/paciente", homeHandler.Home)
	e.POST("/paciente/citas", bookingHandler.Book)
	e.GET("/paciente/citas/:id", bookingHandler.GetOwn)
	e.POST("/paciente/citas/:id/cancelar", bookingHandler.CancelOwn)

	// --- Doctor area ---
	e.GET("/medico", homeHandler.Home)
	e.GET("/medico/pending", homeHandler.Home)
	e.GET("/medico/citas/:id", bookingHandler.GetOwn)
	e.POST("/medico/citas/:id/estado", bookingHandler.Transition)
	e.POST("/medico/pacientes/:patient_id", assignmentHandler.Adopt)
	e.DELETE("/medico/pacientes/:patient_id", assignmentHandler.Release)

	// --- Admin area ---
	e.GET("/admin", homeHandler.Home)
	e.POST("/admin/asignaciones", assignmentHandler.AdminAdopt)
	e.DELETE("/admin/asignaciones", assignmentHandler.AdminRelease)
	e.POST("/admin/medicos/:id/aprobar", adminHandler.ApproveDoctor)
	e.PUT("/admin/usuarios/:id/estado", adminHandler.SetStatus)

	// --- Health probes, metrics and docs (public) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
