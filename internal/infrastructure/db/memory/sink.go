package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinicportal/portal/internal/core/domain"
)

// LogSink delivers notifications to the log. It stands in for the external
// notification channel when no database is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, event domain.Event) error {
	s.log.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("aggregate_id", event.AggregateID).
		Interface("payload", event.Payload).
		Msg("notification")
	return nil
}
