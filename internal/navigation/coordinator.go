// Package navigation implements the transition concurrency coordinator: a
// bounded history stack of unit transitions gated by a FIFO mutual
// exclusion lock, guaranteeing at most one in-flight transition and
// request-ordered completion of waiters.
package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/conneroisu/modkit/internal/errors"
	"github.com/conneroisu/modkit/internal/interfaces"
	"github.com/conneroisu/modkit/internal/logging"
	"github.com/conneroisu/modkit/internal/relationship"
)

// DefaultMaxDepth bounds the history stack when no depth is configured.
const DefaultMaxDepth = 32

// entry is one forward transition on the history stack.
type entry struct {
	unitName   string
	completion *Completion
}

// Coordinator serializes unit transitions against a bounded history stack.
type Coordinator struct {
	lock fifoLock

	mutex    sync.Mutex
	history  []*entry
	disposed bool

	maxDepth  int
	resolver  *relationship.Resolver
	publisher interfaces.Publisher
	logger    logging.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithMaxDepth caps the history stack. Values below 1 keep the default.
func WithMaxDepth(depth int) CoordinatorOption {
	return func(c *Coordinator) {
		if depth >= 1 {
			c.maxDepth = depth
		}
	}
}

// WithResolver sets the relationship resolver used to classify each
// transition's outgoing/incoming pair.
func WithResolver(resolver *relationship.Resolver) CoordinatorOption {
	return func(c *Coordinator) {
		c.resolver = resolver
	}
}

// WithPublisher sets the publisher that receives transition events.
func WithPublisher(publisher interfaces.Publisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.publisher = publisher
	}
}

// WithCoordinatorLogger sets the coordinator's logger.
func WithCoordinatorLogger(logger logging.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger.WithComponent("navigation")
		}
	}
}

// NewCoordinator creates a navigation coordinator.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		maxDepth: DefaultMaxDepth,
		resolver: relationship.NewResolver(nil),
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init seeds the history with the default unit. It is a no-op when history
// already has entries, so re-initialization cannot clobber live state.
func (c *Coordinator) Init(defaultUnit string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.disposed {
		return errors.NewDisposed("init")
	}
	if len(c.history) > 0 {
		return nil
	}

	c.history = append(c.history, &entry{
		unitName:   defaultUnit,
		completion: newCompletion(),
	})
	return nil
}

// Goto transitions to the target unit. It acquires the transition lock
// (suspending behind earlier callers in FIFO order), evicts the oldest
// entries beyond the depth cap, appends a history entry, publishes a
// transition event carrying the outgoing/incoming relationship, and
// returns the new entry's completion. The completion resolves when the
// entry is popped by GoBack, evicted, or disposed.
func (c *Coordinator) Goto(targetUnit string, value interface{}) (*Completion, error) {
	if err := c.check("goto"); err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.mutex.Lock()
	// Dispose may have run while this caller waited for the lock.
	if c.disposed {
		c.mutex.Unlock()
		return nil, errors.NewDisposed("goto")
	}

	outgoing := ""
	if len(c.history) > 0 {
		outgoing = c.history[len(c.history)-1].unitName
	}

	// Evicted entries resolve with no value so their waiters cannot hang
	// forever.
	for len(c.history) >= c.maxDepth {
		evicted := c.history[0]
		c.history = c.history[1:]
		evicted.completion.forceResolve()
	}

	next := &entry{
		unitName:   targetUnit,
		completion: newCompletion(),
	}
	c.history = append(c.history, next)
	c.mutex.Unlock()

	rel := c.resolver.Between(outgoing, targetUnit)

	c.logger.Debug(context.Background(), "transition",
		"from", outgoing,
		"to", targetUnit,
		"relationship", rel.String(),
	)

	if c.publisher != nil {
		c.publisher.Publish(interfaces.Event{
			Type:         interfaces.EventTypeTransition,
			Timestamp:    time.Now(),
			From:         outgoing,
			To:           targetUnit,
			Relationship: rel.String(),
			Value:        value,
		})
	}

	return next.completion, nil
}

// GoBack removes the newest history entry and resolves its pending
// completion with the given value.
func (c *Coordinator) GoBack(value interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.disposed {
		return errors.NewDisposed("goBack")
	}
	if len(c.history) == 0 {
		return errors.NewEmptyHistory()
	}

	last := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]

	return last.completion.resolve(last.unitName, value)
}

// Clear force-resolves every pending completion and empties the history.
// The coordinator remains usable.
func (c *Coordinator) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.disposed {
		return errors.NewDisposed("clear")
	}

	for _, e := range c.history {
		e.completion.forceResolve()
	}
	c.history = nil
	return nil
}

// Dispose force-resolves every pending completion, clears the history, and
// marks the coordinator permanently unusable. Idempotent: a second call is
// a no-op and never re-resolves completions.
func (c *Coordinator) Dispose() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true

	for _, e := range c.history {
		e.completion.forceResolve()
	}
	c.history = nil
}

// History returns a read-only snapshot of unit names, oldest first.
func (c *Coordinator) History() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	names := make([]string, len(c.history))
	for i, e := range c.history {
		names[i] = e.unitName
	}
	return names
}

// Current returns the unit on top of the history stack, or "" when the
// history is empty.
func (c *Coordinator) Current() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.history) == 0 {
		return ""
	}
	return c.history[len(c.history)-1].unitName
}

// Disposed reports whether the coordinator has been disposed.
func (c *Coordinator) Disposed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.disposed
}

func (c *Coordinator) check(operation string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.disposed {
		return errors.NewDisposed(operation)
	}
	return nil
}
