package activity

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shurl-web/internal/messaging"
)

// Publisher routes action events to their topic.
type Publisher struct {
	shorten messaging.Publish[ActionEvent]
	lookup  messaging.Publish[ActionEvent]
}

// NewPublisher creates an activity publisher on top of a watermill publisher.
func NewPublisher(publisher message.Publisher) *Publisher {
	return &Publisher{
		shorten: messaging.NewPublishFunc[ActionEvent](publisher, TopicShorten),
		lookup:  messaging.NewPublishFunc[ActionEvent](publisher, TopicLookup),
	}
}

// Publish sends event on the topic of its action, correlated by session.
func (p *Publisher) Publish(ctx context.Context, event *ActionEvent) error {
	if event.SessionID != "" {
		ctx = messaging.ContextWithCorrelationID(ctx, event.SessionID)
	}

	if TopicFor(event.Action) == TopicLookup {
		return p.lookup(ctx, event)
	}

	return p.shorten(ctx, event)
}
