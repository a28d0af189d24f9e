// Package interfaces provides core abstractions for the modkit substrate.
// This package defines interfaces to reduce coupling between packages and
// improve testability by enabling dependency injection and mocking.
package interfaces

import "time"

// UnitRegistry is the collaborator surface the relationship resolver and
// navigation coordinator consume. The concrete implementation lives in
// internal/registry; tests substitute fakes.
type UnitRegistry interface {
	// CurrentIdentity returns the structural name of the currently active
	// unit, or "" when none has been set.
	CurrentIdentity() string

	// DependenciesOf returns the direct dependency set of a unit. Unknown
	// units yield an empty set, never an error.
	DependenciesOf(unit string) []string

	// IsActive reports whether the unit is registered and active.
	IsActive(unit string) bool
}

// Publisher broadcasts substrate events (transitions, policy violations) to
// interested observers. Publish must never block the caller.
type Publisher interface {
	Publish(event Event)
}

// EventType represents the kind of substrate event.
type EventType int

const (
	EventTypeTransition EventType = iota
	EventTypeViolation
	EventTypeUnitChange
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeTransition:
		return "transition"
	case EventTypeViolation:
		return "violation"
	case EventTypeUnitChange:
		return "unit_change"
	default:
		return "unknown"
	}
}

// Event is a substrate notification delivered through a Publisher.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// From and To identify sender and receiver units. For transitions,
	// From is the outgoing unit and To the incoming one.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// Path is the action path involved, if any.
	Path string `json:"path,omitempty"`

	// Relationship is the structural classification between From and To
	// at the time the event was produced.
	Relationship string `json:"relationship,omitempty"`

	// Reason carries diagnostic detail (policy reason, violation cause).
	Reason string `json:"reason,omitempty"`

	// Value is the caller-supplied transition payload, if any.
	Value interface{} `json:"value,omitempty"`
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(event Event)

// Publish implements the Publisher interface.
func (f PublisherFunc) Publish(event Event) {
	f(event)
}
