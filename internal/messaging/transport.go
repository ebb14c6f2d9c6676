package messaging

import (
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Transport owns the publisher and subscriber that carry events.
// Both may be the same value, as with the in-process channel.
type Transport struct {
	publisher  message.Publisher
	subscriber message.Subscriber

	once sync.Once
	err  error
}

// NewTransport pairs a publisher with a subscriber. Either may be nil.
func NewTransport(publisher message.Publisher, subscriber message.Subscriber) *Transport {
	return &Transport{publisher: publisher, subscriber: subscriber}
}

func (t *Transport) Publisher() message.Publisher {
	return t.publisher
}

func (t *Transport) Subscriber() message.Subscriber {
	return t.subscriber
}

// Shutdown closes the publisher and the subscriber once each.
func (t *Transport) Shutdown() error {
	t.once.Do(func() {
		var errs []error

		if t.publisher != nil {
			errs = append(errs, t.publisher.Close())
		}

		if t.subscriber != nil && !t.shared() {
			errs = append(errs, t.subscriber.Close())
		}

		t.err = errors.Join(errs...)
	})

	return t.err
}

func (t *Transport) shared() bool {
	pub, ok := t.subscriber.(message.Publisher)

	return ok && pub == t.publisher
}
