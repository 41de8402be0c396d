package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicportal/portal/internal/core/domain"
)

// NotificationSink records dispatched events in the notifications table.
// Redelivery of the same event is ignored.
type NotificationSink struct {
	pool *pgxpool.Pool
}

func NewNotificationSink(pool *pgxpool.Pool) *NotificationSink {
	return &NotificationSink{pool: pool}
}

func (s *NotificationSink) Deliver(ctx context.Context, e domain.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, type, aggregate_id, payload, occurred_at, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, string(e.Type), e.AggregateID, e.Payload, e.OccurredAt, time.Now().UTC())
	return classify(err)
}
