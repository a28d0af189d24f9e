package navigation

import "sync"

// fifoLock is a binary mutual-exclusion primitive that grants the lock to
// waiters in the order they requested it. sync.Mutex makes no ordering
// promise; transition serialization requires FIFO completion of waiters.
type fifoLock struct {
	mutex   sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// Lock acquires the lock, suspending the caller behind earlier waiters.
func (l *fifoLock) Lock() {
	l.mutex.Lock()
	if !l.locked {
		l.locked = true
		l.mutex.Unlock()
		return
	}

	wait := make(chan struct{})
	l.waiters = append(l.waiters, wait)
	l.mutex.Unlock()

	<-wait
}

// Unlock releases the lock, handing it directly to the oldest waiter.
func (l *fifoLock) Unlock() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		// The lock stays held; ownership transfers to the waiter.
		close(next)
		return
	}

	l.locked = false
}
