package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

const (
	// MetadataEventType carries the topic an event was published on.
	MetadataEventType = "event_type"
	// MetadataPublishedAt carries the RFC 3339 publish time.
	MetadataPublishedAt = "published_at"
)

type correlationKey struct{}

// ContextWithCorrelationID makes every event published with ctx carry id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)

	return id
}

// Publish is a function that publishes a typed event.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
// Events without a correlation id in ctx get a fresh one.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(MetadataEventType, topic)
		msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))

		correlationID := correlationIDFromContext(ctx)
		if correlationID == "" {
			correlationID = watermill.NewUUID()
		}

		middleware.SetCorrelationID(correlationID, msg)
		msg.SetContext(ctx)

		return publisher.Publish(topic, msg)
	}
}
