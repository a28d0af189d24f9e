package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/modkit/internal/interfaces"
)

func receive(t *testing.T, ch <-chan interfaces.Event) interfaces.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("expected an event")
		return interfaces.Event{}
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Publish(interfaces.Event{
		Type: interfaces.EventTypeTransition,
		From: "home",
		To:   "settings",
	})

	event := receive(t, ch)
	assert.Equal(t, interfaces.EventTypeTransition, event.Type)
	assert.Equal(t, "home", event.From)
	assert.Equal(t, "settings", event.To)
	assert.False(t, event.Timestamp.IsZero(), "bus stamps events")
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe()
	second := bus.Subscribe()

	assert.Equal(t, 2, bus.SubscriberCount())

	bus.Publish(interfaces.Event{Type: interfaces.EventTypeViolation})

	assert.Equal(t, interfaces.EventTypeViolation, receive(t, first).Type)
	assert.Equal(t, interfaces.EventTypeViolation, receive(t, second).Type)
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	bus.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			bus.Publish(interfaces.Event{Type: interfaces.EventTypeTransition})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Unsubscribe(ch)
	assert.Equal(t, 0, bus.SubscriberCount())

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel is closed")

	// Publishing afterwards is safe
	bus.Publish(interfaces.Event{Type: interfaces.EventTypeTransition})
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Close()
	bus.Close() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Publish and Subscribe after close are no-ops
	bus.Publish(interfaces.Event{Type: interfaces.EventTypeTransition})
	late := bus.Subscribe()
	_, open = <-late
	assert.False(t, open, "late subscribers get a closed channel")
}
