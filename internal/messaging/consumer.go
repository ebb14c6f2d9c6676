package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.uber.org/zap"
)

// ErrUnrecoverable marks a handler error that redelivery cannot fix.
// Messages failing with it are acked and dropped instead of nacked.
var ErrUnrecoverable = errors.New("unrecoverable event")

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// Stats counts what a consumer did with the messages it received.
type Stats struct {
	Handled int64
	Dropped int64
	Failed  int64
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	timeout time.Duration
}

// WithHandlerTimeout bounds each handler call.
func WithHandlerTimeout(d time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		c.timeout = d
	}
}

// Consumer subscribes to a topic and decodes each message into T for its handler.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	config     consumerConfig

	cancel context.CancelFunc
	done   chan struct{}

	handled atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewConsumer creates a consumer of T events on topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	c := &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
	}

	for _, opt := range opts {
		opt(&c.config)
	}

	return c
}

func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Stats returns the message counters so far.
func (c *Consumer[T]) Stats() Stats {
	return Stats{
		Handled: c.handled.Load(),
		Dropped: c.dropped.Load(),
		Failed:  c.failed.Load(),
	}
}

// Start subscribes and processes messages in the background until ctx ends or Shutdown.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		cancel()

		return err
	}

	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.process(ctx, msg)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	logger := c.logger.With(
		zap.String("messageId", msg.UUID),
		zap.String("correlationId", middleware.MessageCorrelationID(msg)),
	)

	// streams may be shared; events of another type are not ours to handle
	if eventType := msg.Metadata.Get(MetadataEventType); eventType != "" && eventType != c.topic {
		c.drop(msg, logger, "skipping foreign event", zap.String("eventType", eventType))

		return
	}

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.drop(msg, logger, "dropping malformed event", zap.Error(err))

		return
	}

	handlerCtx := ctx
	if c.config.timeout > 0 {
		var cancel context.CancelFunc

		handlerCtx, cancel = context.WithTimeout(ctx, c.config.timeout)
		defer cancel()
	}

	err := c.handler(handlerCtx, &event)

	switch {
	case err == nil:
		c.handled.Add(1)
		msg.Ack()
		logger.Debug("processed event")
	case errors.Is(err, ErrUnrecoverable):
		c.drop(msg, logger, "dropping unrecoverable event", zap.Error(err))
	default:
		c.failed.Add(1)
		msg.Nack()
		logger.Error("failed to handle event", zap.Error(err))
	}
}

func (c *Consumer[T]) drop(msg *message.Message, logger *zap.Logger, reason string, fields ...zap.Field) {
	c.dropped.Add(1)
	msg.Ack()
	logger.Warn(reason, fields...)
}

// Shutdown stops the consumer and waits for the message in flight.
// It is a no-op for a consumer that never started.
func (c *Consumer[T]) Shutdown() error {
	if c.done == nil {
		return nil
	}

	c.cancel()
	<-c.done

	stats := c.Stats()
	c.logger.Info("consumer stopped",
		zap.Int64("handled", stats.Handled),
		zap.Int64("dropped", stats.Dropped),
		zap.Int64("failed", stats.Failed),
	)

	return nil
}
