package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicportal/portal/internal/core/domain"
)

// NotificationSink persists notifications to the notifications collection,
// where the external delivery channel picks them up.
type NotificationSink struct {
	col *mongo.Collection
}

func NewNotificationSink(db *mongo.Database) *NotificationSink {
	return &NotificationSink{col: db.Collection(collectionNotifications)}
}

// Deliver inserts the event. Redelivery of the same event id is ignored.
func (s *NotificationSink) Deliver(ctx context.Context, event domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"_id":          event.ID,
		"type":         string(event.Type),
		"aggregate_id": event.AggregateID,
		"payload":      event.Payload,
		"occurred_at":  event.OccurredAt.UTC(),
		"delivered_at": time.Now().UTC(),
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert notification: %w", classify(err))
	}
	return nil
}

// EnsureIndexes creates the lookup index used by notification consumers.
func (s *NotificationSink) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}, {Key: "occurred_at", Value: 1}},
		Options: options.Index().SetName("ix_notifications_type_time"),
	})
	return err
}
