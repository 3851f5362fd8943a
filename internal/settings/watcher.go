package settings

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads the store when the settings file changes on disk (an
// external editor, another instance) and notifies subscribers.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	handlers []func()
}

// NewWatcher creates a watcher for the store's file. Call Run to start.
func NewWatcher(store *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(store.Path()); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{store: store, watcher: fsw}, nil
}

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers = append(w.handlers, fn)
}

// Run watches until ctx is cancelled. Write bursts are debounced into a
// single reload.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := w.store.Load(); err != nil {
				// Unreadable mid-write file; the next event retries.
				continue
			}
			w.notify()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	handlers := make([]func(), len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
