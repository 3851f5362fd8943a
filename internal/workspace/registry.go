package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/workdeck/workdeck/internal/errors"
)

const defaultMaxWorkspaces = 32

// Registry is the ordered collection of open workspaces with a single
// active selection.
//
// Mutations (Add, Activate, Close, CloseAll) are meant to be driven by
// one owner goroutine, the UI event loop; hooks are awaited inline on
// that goroutine. Accessors and event registration are safe from any
// goroutine.
type Registry struct {
	mu     sync.RWMutex
	items  []*Workspace
	active *Workspace
	max    int

	subscribers []func(Event)
	watchers    []chan Event
}

// NewRegistry creates a registry holding at most max workspaces. A
// non-positive max selects the default of 32.
func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = defaultMaxWorkspaces
	}

	return &Registry{max: max}
}

// Add appends ws to the end of the list and makes it active. When the
// registry is full it fails with the capacity error and no state
// changes. The previously active workspace's OnDeactivate hook is
// awaited but cannot veto the activation.
func (r *Registry) Add(ctx context.Context, ws *Workspace) error {
	r.mu.Lock()

	if len(r.items) >= r.max {
		r.mu.Unlock()
		return errors.ErrCapacityExceeded(r.max)
	}
	if r.indexOfLocked(ws) >= 0 {
		r.mu.Unlock()
		return errors.ErrWorkspaceDuplicate(ws.Title)
	}

	ws.setState(StateInactive)
	r.items = append(r.items, ws)
	r.mu.Unlock()

	r.emit(Event{Type: EventAdded, Workspace: ws, Timestamp: time.Now()})

	r.activate(ctx, ws)

	return nil
}

// Activate makes ws the active workspace. The outgoing workspace's
// OnDeactivate hook is awaited first; it cannot veto.
func (r *Registry) Activate(ctx context.Context, ws *Workspace) error {
	r.mu.RLock()
	member := r.indexOfLocked(ws) >= 0
	current := r.active
	r.mu.RUnlock()

	if !member {
		return errors.NewValidationError(
			errors.ErrCodeWorkspaceNotFound, "workspace not in registry: "+ws.Title)
	}
	if current == ws {
		return nil
	}

	r.activate(ctx, ws)

	return nil
}

// Close runs the close-confirmation flow for ws. It reports true when
// the workspace was removed. A declined confirmation is normal flow
// control: false with a nil error, registry untouched. A failing
// OnClosing hook does not prevent removal; its error is returned for
// the caller to log.
func (r *Registry) Close(ctx context.Context, ws *Workspace) (bool, error) {
	r.mu.RLock()
	idx := r.indexOfLocked(ws)
	r.mu.RUnlock()

	if idx < 0 {
		return false, errors.NewValidationError(
			errors.ErrCodeWorkspaceNotFound, "workspace not in registry: "+ws.Title)
	}

	if ws.ConfirmClose != nil {
		ok, err := ws.ConfirmClose(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	ws.setState(StateClosing)

	var closingErr error
	if ws.OnClosing != nil {
		closingErr = ws.OnClosing(ctx)
	}

	r.mu.Lock()
	idx = r.indexOfLocked(ws)
	if idx < 0 {
		// Removed while the hooks ran.
		r.mu.Unlock()
		return false, nil
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	wasActive := r.active == ws
	if wasActive {
		r.active = nil
	}
	remaining := len(r.items)
	var next *Workspace
	if wasActive && remaining > 0 {
		nextIdx := idx
		if nextIdx > remaining-1 {
			nextIdx = remaining - 1
		}
		next = r.items[nextIdx]
	}
	r.mu.Unlock()

	ws.setState(StateRemoved)
	r.emit(Event{Type: EventRemoved, Workspace: ws, Timestamp: time.Now()})

	if next != nil {
		r.activate(ctx, next)
	}

	return true, closingErr
}

// CloseAll closes workspaces in reverse insertion order, most recently
// added first. It stops at the first declined confirmation and reports
// false, leaving the not-yet-processed workspaces untouched.
func (r *Registry) CloseAll(ctx context.Context) (bool, error) {
	snapshot := r.Workspaces()

	for i := len(snapshot) - 1; i >= 0; i-- {
		closed, err := r.Close(ctx, snapshot[i])
		if err != nil {
			return false, err
		}
		if !closed {
			return false, nil
		}
	}

	return true, nil
}

// Workspaces returns a snapshot of the ordered list.
func (r *Registry) Workspaces() []*Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*Workspace, len(r.items))
	copy(snapshot, r.items)

	return snapshot
}

// Active returns the active workspace, or nil when none is.
func (r *Registry) Active() *Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Count returns the number of open workspaces.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Max returns the workspace capacity.
func (r *Registry) Max() int {
	return r.max
}

// Subscribe registers a callback invoked for every registry event.
func (r *Registry) Subscribe(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscribers = append(r.subscribers, fn)
}

// Watch returns a channel that receives registry events. Sends are
// non-blocking: a full channel drops the notification.
func (r *Registry) Watch() <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, 100)
	r.watchers = append(r.watchers, ch)

	return ch
}

// Unwatch removes a watcher channel and closes it.
func (r *Registry) Unwatch(ch <-chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// activate switches the active selection to ws, awaiting the outgoing
// workspace's OnDeactivate hook. Deactivation cannot veto.
func (r *Registry) activate(ctx context.Context, ws *Workspace) {
	r.mu.Lock()
	previous := r.active
	r.mu.Unlock()

	if previous == ws {
		return
	}

	if previous != nil {
		if previous.OnDeactivate != nil {
			// Awaited, may save state, cannot veto.
			_ = previous.OnDeactivate(ctx)
		}
		previous.setState(StateInactive)
	}

	r.mu.Lock()
	r.active = ws
	r.mu.Unlock()

	ws.setState(StateActive)
	r.emit(Event{Type: EventActivated, Workspace: ws, Timestamp: time.Now()})
}

// indexOfLocked returns the position of ws, or -1. Caller holds a lock.
func (r *Registry) indexOfLocked(ws *Workspace) int {
	for i, item := range r.items {
		if item == ws {
			return i
		}
	}

	return -1
}

// emit fans an event out to watchers and subscribers outside the lock.
func (r *Registry) emit(ev Event) {
	r.mu.RLock()
	watchers := make([]chan Event, len(r.watchers))
	copy(watchers, r.watchers)
	subscribers := make([]func(Event), len(r.subscribers))
	copy(subscribers, r.subscribers)
	r.mu.RUnlock()

	for _, watcher := range watchers {
		select {
		case watcher <- ev:
		default:
			// Skip if channel is full
		}
	}
	for _, fn := range subscribers {
		fn(ev)
	}
}
