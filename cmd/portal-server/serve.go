package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicportal/portal/internal/api"
	"github.com/clinicportal/portal/internal/core/service"
	"github.com/clinicportal/portal/internal/infrastructure/queue"
	"github.com/clinicportal/portal/internal/pkg/config"
	"github.com/clinicportal/portal/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-server",
	})

	secret := cfg.JWTSecret
	if secret == "" {
		secret = devSecret()
		log.Warn().Msg("JWT_SECRET not set; using a random secret, sessions end on restart")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open stores")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st.Close(closeCtx)
	}()

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, cfg.Notify.Buffer, st.sink, logger.Component("notifications"))
	dispatcher.Start(workerCtx)

	tokens := service.NewSessionTokens(secret, cfg.TokenTTL)
	resolver := service.NewIdentityResolver(tokens, st.users, st.revoked, cfg.IdentityTimeout, logger.Component("identity"))

	e := api.NewRouter(api.Deps{
		Gateway:      service.NewGateway(resolver, logger.Component("gateway")),
		Accounts:     service.NewAccountService(st.users, tokens, st.revoked, logger.Component("accounts")),
		Assignments:  service.NewAssignmentService(st.users, st.assignments, dispatcher, logger.Component("assignments")),
		Bookings:     service.NewBookingService(st.users, st.appointments, dispatcher, logger.Component("bookings")),
		Ready:        st.ready,
		SecureCookie: !cfg.IsDevelopment(),
		Log:          log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("driver", cfg.StoreDriver).Msg("portal server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func devSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
