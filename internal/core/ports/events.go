package ports

import (
	"context"

	"github.com/clinicportal/portal/internal/core/domain"
)

// EventPublisher hands an event to the notification channel. Publish never
// blocks the caller and never fails the write that produced the event.
type EventPublisher interface {
	Publish(event domain.Event)
}

// EventSink delivers a single event to its destination.
type EventSink interface {
	Deliver(ctx context.Context, event domain.Event) error
}
