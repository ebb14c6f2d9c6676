package activity

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shurl-web/internal/messaging"
	"go.uber.org/zap"
)

const saveTimeout = 5 * time.Second

// NewConsumers creates one consumer per action topic, all saving into store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []*messaging.Consumer[ActionEvent] {
	topics := []string{TopicShorten, TopicLookup}
	consumers := make([]*messaging.Consumer[ActionEvent], 0, len(topics))

	for _, topic := range topics {
		consumers = append(consumers, messaging.NewConsumer(
			subscriber,
			topic,
			validated(store),
			logger.With(zap.String("consumer", "activity")),
			messaging.WithHandlerTimeout(saveTimeout),
		))
	}

	return consumers
}

func validated(store Store) messaging.Handler[ActionEvent] {
	return func(ctx context.Context, event *ActionEvent) error {
		if err := event.Validate(); err != nil {
			return err
		}

		return store.SaveAction(ctx, event)
	}
}
