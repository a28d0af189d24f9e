package navigation

import (
	"sync"

	"github.com/conneroisu/modkit/internal/errors"
)

// Completion is a single-resolution future attached to a history entry. It
// resolves exactly once: normally with the value passed to GoBack, or with
// a nil value when its entry is evicted or the coordinator is disposed.
type Completion struct {
	mutex    sync.Mutex
	done     chan struct{}
	value    interface{}
	resolved bool
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Done returns a channel closed when the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Resolved reports whether the completion has resolved.
func (c *Completion) Resolved() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.resolved
}

// Value blocks until the completion resolves and returns its value. A
// caller awaiting a completion that never resolves waits indefinitely
// unless Dispose force-resolves it.
func (c *Completion) Value() interface{} {
	<-c.done

	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.value
}

// resolve settles the completion. Resolving twice is a programmer error.
func (c *Completion) resolve(unit string, value interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.resolved {
		return errors.NewAlreadyResolved(unit)
	}
	c.resolved = true
	c.value = value
	close(c.done)

	return nil
}

// forceResolve settles the completion with no value if it is still
// pending. Used on eviction and disposal, where an already-resolved
// completion is not an error.
func (c *Completion) forceResolve() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.resolved {
		return
	}
	c.resolved = true
	close(c.done)
}
