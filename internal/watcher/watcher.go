// Package watcher watches the modkit configuration file for changes with
// intelligent debouncing, so the monitor can reload the unit graph and
// policies without a restart.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler is invoked after the watched file settles.
type ReloadHandler func(path string)

// ConfigWatcher watches a single configuration file, grouping rapid write
// bursts (editors typically emit several) into one reload.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	delay    time.Duration
	handlers []ReloadHandler
	mutex    sync.RWMutex

	timer      *time.Timer
	timerMutex sync.Mutex
}

// NewConfigWatcher creates a watcher for the given file. The debounce
// delay bounds how quickly consecutive writes collapse into one reload.
func NewConfigWatcher(path string, debounceDelay time.Duration) (*ConfigWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounceDelay <= 0 {
		debounceDelay = 300 * time.Millisecond
	}

	cw := &ConfigWatcher{
		watcher:  fsWatcher,
		path:     filepath.Clean(path),
		delay:    debounceDelay,
		handlers: make([]ReloadHandler, 0),
	}

	// Watch the directory, not the file: editors that write via rename
	// replace the inode and a file watch would silently die.
	if err := fsWatcher.Add(filepath.Dir(cw.path)); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return cw, nil
}

// AddHandler adds a reload handler.
func (cw *ConfigWatcher) AddHandler(handler ReloadHandler) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	cw.handlers = append(cw.handlers, handler)
}

// Start begins watching until the context is cancelled.
func (cw *ConfigWatcher) Start(ctx context.Context) {
	go cw.run(ctx)
}

// Stop closes the underlying watcher.
func (cw *ConfigWatcher) Stop() error {
	return cw.watcher.Close()
}

func (cw *ConfigWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.matches(event) {
				continue
			}
			cw.schedule()
		case _, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep watching
		}
	}
}

func (cw *ConfigWatcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// schedule arms (or re-arms) the debounce timer.
func (cw *ConfigWatcher) schedule() {
	cw.timerMutex.Lock()
	defer cw.timerMutex.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.delay, cw.fire)
}

func (cw *ConfigWatcher) fire() {
	cw.mutex.RLock()
	handlers := make([]ReloadHandler, len(cw.handlers))
	copy(handlers, cw.handlers)
	cw.mutex.RUnlock()

	for _, handler := range handlers {
		handler(cw.path)
	}
}
