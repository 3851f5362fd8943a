// Package workspace tracks the open documents of the shell: an ordered
// list with a single active selection, capacity enforcement, and an
// asynchronous close-confirmation flow.
package workspace

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a workspace.
type State int32

const (
	StateInactive State = iota
	StateActive
	StateClosing
	StateRemoved
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Workspace is one open document/tab. The registry owns it from Add
// until removal; no other component should hold a long-lived reference.
type Workspace struct {
	ID       uuid.UUID
	Title    string
	ViewType string

	// ConfirmClose is awaited before removal. Returning false aborts
	// the close, leaving the registry unchanged.
	ConfirmClose func(ctx context.Context) (bool, error)
	// OnClosing runs after a confirmed close, before removal. Cleanup
	// only; it cannot veto.
	OnClosing func(ctx context.Context) error
	// OnDeactivate is awaited when another workspace takes the active
	// slot. It may prompt or save but cannot veto the switch.
	OnDeactivate func(ctx context.Context) error

	dirty atomic.Bool
	state atomic.Int32
}

// New creates a workspace with a fresh id in the Inactive state.
func New(title, viewType string) *Workspace {
	return &Workspace{
		ID:       uuid.New(),
		Title:    title,
		ViewType: viewType,
	}
}

// State returns the current lifecycle state.
func (w *Workspace) State() State {
	return State(w.state.Load())
}

func (w *Workspace) setState(s State) {
	w.state.Store(int32(s))
}

// SetDirty marks or clears unsaved changes.
func (w *Workspace) SetDirty(dirty bool) {
	w.dirty.Store(dirty)
}

// Dirty reports whether the workspace has unsaved changes.
func (w *Workspace) Dirty() bool {
	return w.dirty.Load()
}

// EventType represents the type of registry event.
type EventType int

const (
	EventAdded EventType = iota
	EventActivated
	EventRemoved
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventAdded:
		return "added"
	case EventActivated:
		return "activated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a change in the registry.
type Event struct {
	Type      EventType
	Workspace *Workspace
	Timestamp time.Time
}
