// Package eventloop provides a single-owner dispatch loop. It models the
// UI thread of the shell: workspace lifecycle transitions and console
// notification fan-out are posted here so that exactly one goroutine
// performs them, in order.
package eventloop

import (
	"context"
	"sync"

	"github.com/workdeck/workdeck/internal/errors"
)

const defaultQueueSize = 128

// Loop executes posted functions on the single goroutine running Run.
type Loop struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a loop. It does nothing until Run is called.
func New() *Loop {
	return &Loop{
		tasks:   make(chan func(), defaultQueueSize),
		stopped: make(chan struct{}),
	}
}

// Run drains the task queue on the calling goroutine until ctx is
// cancelled. Exactly one goroutine may call Run.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post enqueues fn for execution without waiting. Returns ErrLoopStopped
// after the loop has shut down.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.stopped:
		return errors.ErrLoopStopped()
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopped:
		return errors.ErrLoopStopped()
	}
}

// PostWait enqueues fn and blocks until it has executed, ctx is done, or
// the loop stops.
func (l *Loop) PostWait(ctx context.Context, fn func()) error {
	done := make(chan struct{})

	err := l.Post(func() {
		defer close(done)
		fn()
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		// The task may have run right before shutdown.
		select {
		case <-done:
			return nil
		default:
			return errors.ErrLoopStopped()
		}
	}
}

// Stopped reports whether the loop has shut down.
func (l *Loop) Stopped() bool {
	select {
	case <-l.stopped:
		return true
	default:
		return false
	}
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}
