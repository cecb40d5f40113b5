// Package broker provides the in-process publish/subscribe channel used to
// fan room events out to connected viewers.
package broker

import (
	"log"
	"sync"

	"github.com/viddel/wrooms/internal/models"
)

// DefaultBufferSize is the per-subscription event buffer
const DefaultBufferSize = 16

// Subscription is one listener on a topic. Events arrive on the channel
// returned by Events until Unsubscribe is called or the broker shuts down.
type Subscription struct {
	topic  string
	events chan *models.Event
	once   sync.Once
}

// Events returns the channel delivering events for this subscription.
// The channel is closed when the subscription ends.
func (s *Subscription) Events() <-chan *models.Event {
	return s.events
}

// Topic returns the topic this subscription listens on
func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.events)
	})
}

// Broker is a single-process pub/sub hub with one topic per room.
// Delivery is at-most-once and best-effort: a publish never blocks, and
// events are dropped for subscribers whose buffers are full. Persisted
// room state remains the source of truth for clients that miss events.
type Broker struct {
	topics     map[string]map[*Subscription]struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
}

// New creates a broker with the default subscription buffer size
func New() *Broker {
	return NewWithBuffer(DefaultBufferSize)
}

// NewWithBuffer creates a broker with the given subscription buffer size
func NewWithBuffer(bufferSize int) *Broker {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Broker{
		topics:     make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new listener on the topic
func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic:  topic,
		events: make(chan *models.Event, b.bufferSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.close()
		return sub
	}

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Unsubscribe removes the listener and closes its event channel
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	if subs, ok := b.topics[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
	b.mu.Unlock()

	sub.close()
}

// Publish delivers the event to every subscriber of its topic without
// blocking. Subscribers that cannot keep up lose the event.
func (b *Broker) Publish(event *models.Event) {
	if event == nil {
		return
	}
	topic := event.Topic()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for sub := range b.topics[topic] {
		select {
		case sub.events <- event:
		default:
			log.Printf("Dropping %s event for slow subscriber on %s", event.Type, topic)
		}
	}
}

// SubscriberCount returns the number of listeners on the topic
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[topic])
}

// Close shuts the broker down and closes every subscription channel
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, subs := range b.topics {
		for sub := range subs {
			sub.close()
		}
	}
	b.topics = make(map[string]map[*Subscription]struct{})
}
