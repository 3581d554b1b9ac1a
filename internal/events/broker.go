// Package events implements best-effort publish/subscribe fan-out for
// unsolicited worker events, keyed by event name.
package events

import (
	"log/slog"
	"sync"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts losing events; delivery is best-effort.
const subscriberBuffer = 16

// Broker fans worker events out to subscribers by event name.
//
// Publish never blocks: an event with no subscribers is discarded, and a
// subscriber whose buffer is full misses that event. Events are published
// from the router's single read loop, so subscribers observe them in wire
// order.
type Broker struct {
	log *slog.Logger

	mu     sync.Mutex
	subs   map[string][]*subscription
	closed bool
}

type subscription struct {
	name string
	ch   chan any
}

// NewBroker creates a new event broker.
func NewBroker(log *slog.Logger) *Broker {
	return &Broker{
		log:  log.With("component", "events"),
		subs: make(map[string][]*subscription, 8),
	}
}

// SetLogger rebinds the broker's logger. The broker is constructed before
// the session logger exists (subscriptions are allowed pre-start), so the
// supervisor rebinds it once the session is up.
func (b *Broker) SetLogger(log *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.log = log.With("component", "events")
}

// Subscribe registers interest in events with the given name.
//
// The returned channel receives each event's data payload. The returned
// cancel function removes the subscription and closes the channel; it is
// safe to call more than once.
func (b *Broker) Subscribe(name string) (<-chan any, func()) {
	sub := &subscription{
		name: name,
		ch:   make(chan any, subscriberBuffer),
	}

	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		close(sub.ch)

		return sub.ch, func() {}
	}

	b.subs[name] = append(b.subs[name], sub)
	log := b.log
	b.mu.Unlock()

	log.Debug("Subscriber added", "event", name)

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			b.remove(sub)
		})
	}

	return sub.ch, cancel
}

// Publish delivers data to all current subscribers for name.
//
// Delivery is fire-and-forget: no acknowledgement, no blocking. An event
// published with no subscribers is simply discarded.
func (b *Broker) Publish(name string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	subs := b.subs[name]
	if len(subs) == 0 {
		return
	}

	for _, sub := range subs {
		select {
		case sub.ch <- data:
		default:
			b.log.Debug("Subscriber buffer full, dropping event", "event", name)
		}
	}
}

// Close removes all subscriptions and closes their channels.
// Publish and Subscribe become no-ops afterwards.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}

	b.subs = nil
}

// remove unregisters sub and closes its channel.
func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	subs := b.subs[sub.name]
	for i, s := range subs {
		if s == sub {
			b.subs[sub.name] = append(subs[:i], subs[i+1:]...)
			close(sub.ch)

			break
		}
	}

	if len(b.subs[sub.name]) == 0 {
		delete(b.subs, sub.name)
	}
}
