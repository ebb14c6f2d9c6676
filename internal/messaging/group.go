package messaging

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Runnable is a background component with a start/stop lifecycle.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

type topicer interface {
	Topic() string
}

// ConsumerGroup starts and stops a set of consumers together.
type ConsumerGroup struct {
	members []Runnable
	logger  *zap.Logger
}

func NewConsumerGroup(logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{logger: logger}
}

func (g *ConsumerGroup) Add(members ...Runnable) {
	g.members = append(g.members, members...)
}

func (g *ConsumerGroup) Len() int {
	return len(g.members)
}

// Start starts every member in order. If one fails, those already running are stopped.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, member := range g.members {
		if err := member.Start(ctx); err != nil {
			_ = stopAll(g.members[:i])

			return fmt.Errorf("failed to start %s: %w", describe(member, i), err)
		}
	}

	topics := make([]string, 0, len(g.members))
	for i, member := range g.members {
		topics = append(topics, describe(member, i))
	}

	g.logger.Info("consumer group started", zap.Strings("members", topics))

	return nil
}

// Shutdown stops every member, last started first, and joins their errors.
// The transport is closed separately.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group", zap.Int("count", len(g.members)))

	return stopAll(g.members)
}

func stopAll(members []Runnable) error {
	var errs []error

	for i := len(members) - 1; i >= 0; i-- {
		if err := members[i].Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func describe(member Runnable, i int) string {
	if t, ok := member.(topicer); ok {
		return "consumer for " + t.Topic()
	}

	return fmt.Sprintf("member %d", i)
}
