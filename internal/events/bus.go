// Package events provides the notification channel the substrate publishes
// on: navigation transitions, policy violations, and unit registry changes
// all fan out through a Bus to any number of subscribers.
package events

import (
	"sync"
	"time"

	"github.com/conneroisu/modkit/internal/interfaces"
)

// Bus fans substrate events out to subscriber channels. Publish never
// blocks: a subscriber that falls behind misses events rather than stalling
// the publisher.
type Bus struct {
	subscribers []chan interfaces.Event
	mutex       sync.RWMutex
	closed      bool
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make([]chan interfaces.Event, 0),
	}
}

// Publish delivers the event to every subscriber. A zero timestamp is
// filled in. Publishing on a closed bus is a no-op.
func (b *Bus) Publish(event interfaces.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if b.closed {
		return
	}

	for _, subscriber := range b.subscribers {
		select {
		case subscriber <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Subscribe returns a channel that receives published events.
func (b *Bus) Subscribe() <-chan interfaces.Event {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ch := make(chan interfaces.Event, 100)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan interfaces.Event) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i, subscriber := range b.subscribers {
		if subscriber == ch {
			close(subscriber)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// Close shuts the bus down, closing every subscriber channel. Idempotent.
func (b *Bus) Close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, subscriber := range b.subscribers {
		close(subscriber)
	}
	b.subscribers = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return len(b.subscribers)
}
