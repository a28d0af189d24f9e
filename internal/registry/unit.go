// Package registry manages the set of units participating in dispatch,
// relationship resolution, and navigation. It tracks each unit's direct
// dependency set and the currently active unit, and fans registration
// changes out to watchers.
package registry

import (
	"sync"
	"time"
)

// UnitRegistry manages all registered units
type UnitRegistry struct {
	units    map[string]*UnitInfo
	current  string
	mutex    sync.RWMutex
	watchers []chan UnitEvent
}

// UnitInfo holds metadata about a registered unit
type UnitInfo struct {
	Name         string
	Dependencies []string
	Active       bool
	RegisteredAt time.Time
}

// UnitEvent represents a change in the unit registry
type UnitEvent struct {
	Type      EventType
	Unit      *UnitInfo
	Timestamp time.Time
}

// EventType represents the type of unit event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// NewUnitRegistry creates a new unit registry
func NewUnitRegistry() *UnitRegistry {
	return &UnitRegistry{
		units:    make(map[string]*UnitInfo),
		watchers: make([]chan UnitEvent, 0),
	}
}

// Register adds or updates a unit in the registry
func (r *UnitRegistry) Register(unit *UnitInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.units[unit.Name]; exists {
		eventType = EventTypeUpdated
	}

	if unit.RegisteredAt.IsZero() {
		unit.RegisteredAt = time.Now()
	}
	r.units[unit.Name] = unit

	r.notify(UnitEvent{
		Type:      eventType,
		Unit:      unit,
		Timestamp: time.Now(),
	})
}

// Get retrieves a unit by name
func (r *UnitRegistry) Get(name string) (*UnitInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	unit, exists := r.units[name]
	return unit, exists
}

// GetAll returns all registered units
func (r *UnitRegistry) GetAll() map[string]*UnitInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*UnitInfo, len(r.units))
	for name, unit := range r.units {
		result[name] = unit
	}
	return result
}

// Remove removes a unit from the registry
func (r *UnitRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	unit, exists := r.units[name]
	if !exists {
		return
	}

	delete(r.units, name)
	if r.current == name {
		r.current = ""
	}

	r.notify(UnitEvent{
		Type:      EventTypeRemoved,
		Unit:      unit,
		Timestamp: time.Now(),
	})
}

// Count returns the number of registered units
func (r *UnitRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.units)
}

// SetCurrent marks a unit as the currently active one. Unknown units are
// ignored so a stale caller cannot poison the identity lookup.
func (r *UnitRegistry) SetCurrent(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.units[name]; !exists {
		return
	}
	r.current = name
}

// CurrentIdentity returns the name of the currently active unit, or ""
// when none has been set.
func (r *UnitRegistry) CurrentIdentity() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.current
}

// DependenciesOf returns a copy of a unit's direct dependency set. Unknown
// units yield an empty set.
func (r *UnitRegistry) DependenciesOf(name string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	unit, exists := r.units[name]
	if !exists {
		return nil
	}

	deps := make([]string, len(unit.Dependencies))
	copy(deps, unit.Dependencies)
	return deps
}

// IsActive reports whether the unit is registered and active
func (r *UnitRegistry) IsActive(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	unit, exists := r.units[name]
	return exists && unit.Active
}

// Watch returns a channel that receives unit events
func (r *UnitRegistry) Watch() <-chan UnitEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan UnitEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *UnitRegistry) UnWatch(ch <-chan UnitEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify fans an event out to all watchers. Callers must hold the mutex.
func (r *UnitRegistry) notify(event UnitEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
