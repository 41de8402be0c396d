package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/api/handler"
	"github.com/clinicportal/portal/internal/core/ports"
	"github.com/clinicportal/portal/internal/infrastructure/db/memory"
	"github.com/clinicportal/portal/internal/infrastructure/db/mongo"
	"github.com/clinicportal/portal/internal/infrastructure/db/postgres"
	"github.com/clinicportal/portal/internal/infrastructure/db/redis"
	"github.com/clinicportal/portal/internal/pkg/config"
)

// stores bundles the persistence the services run on for the configured
// driver.
type stores struct {
	users        ports.UserRepository
	assignments  ports.AssignmentRepository
	appointments ports.AppointmentRepository
	sink         ports.EventSink
	revoked      ports.SessionRevoker
	ready        map[string]handler.Pinger
	closers      []func(context.Context)
}

func (s *stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i](ctx)
	}
}

// openStores connects to the configured driver and prepares its schema. The
// memory driver keeps revocations in process; the others use Redis.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{ready: map[string]handler.Pinger{}}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		s.users = memory.NewUserRepository()
		s.assignments = memory.NewAssignmentRepository()
		s.appointments = memory.NewAppointmentRepository()
		s.sink = memory.NewLogSink(log.With().Str("component", "notifications").Logger())
		s.revoked = memory.NewRevocationSet()
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return s, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.users = mongo.NewUserRepository(db)
		s.assignments = mongo.NewAssignmentRepository(db)
		s.appointments = mongo.NewAppointmentRepository(db)
		s.sink = mongo.NewNotificationSink(db)
		s.ready["mongodb"] = mongo.Pinger{DB: db}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) { pool.Close() })
		if err := postgres.Migrate(ctx, pool); err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.users = postgres.NewUserRepository(pool)
		s.assignments = postgres.NewAssignmentRepository(pool)
		s.appointments = postgres.NewAppointmentRepository(pool)
		s.sink = postgres.NewNotificationSink(pool)
		s.ready["postgres"] = pool
		log.Info().Msg("connected to postgres")

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  2 * time.Second,
	})
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.closers = append(s.closers, func(context.Context) { _ = client.Close() })
	s.revoked = redis.NewRevocationStore(client)
	s.ready["redis"] = redis.Pinger{Client: client}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	return s, nil
}
