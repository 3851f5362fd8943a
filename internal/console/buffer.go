// Package console implements the debug console: a bounded in-memory log
// buffer with level filtering, optional redaction on ingest, observer
// notification, stdout/stderr capture and text export.
package console

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/workdeck/workdeck/internal/redact"
)

const defaultMaxEntries = 2000

// Options configures a Buffer.
type Options struct {
	// MaxEntries caps the number of stored entries. Zero means the
	// default of 2000.
	MaxEntries int
	// MinLevel drops entries below this level at ingest.
	MinLevel Level
	// RedactOnIngest scrubs entry text through Engine before storing.
	// Once enabled, the original text of an ingested entry is not
	// recoverable: only the ingest-time redaction is ever stored.
	RedactOnIngest bool
	// Engine is the redaction engine. Required when RedactOnIngest is
	// set; also used for re-redaction on redacted reads.
	Engine *redact.Engine
}

// Buffer is a bounded FIFO of console entries. All operations are safe
// for concurrent use; any goroutine may log.
type Buffer struct {
	mu             sync.Mutex
	entries        []Entry
	maxEntries     int
	minLevel       Level
	redactOnIngest bool
	engine         *redact.Engine

	subscribers []func(Entry)
	watchers    []chan Entry
}

// NewBuffer creates a buffer with the given options.
func NewBuffer(opts Options) *Buffer {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.Engine == nil && opts.RedactOnIngest {
		opts.Engine = redact.NewEngine()
	}

	return &Buffer{
		entries:        make([]Entry, 0, opts.MaxEntries),
		maxEntries:     opts.MaxEntries,
		minLevel:       opts.MinLevel,
		redactOnIngest: opts.RedactOnIngest,
		engine:         opts.Engine,
	}
}

// AddEntry appends an entry. Entries below the minimum level are dropped
// silently: no mutation, no notification. When redact-on-ingest is
// enabled the stored entry carries the redacted text, and observers see
// that same entry.
func (b *Buffer) AddEntry(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.Lock()

	if e.Level < b.minLevel {
		b.mu.Unlock()
		return
	}

	if b.redactOnIngest && b.engine != nil {
		e = redactEntry(b.engine, e)
	}

	b.entries = append(b.entries, e)
	for len(b.entries) > b.maxEntries {
		b.entries = b.entries[1:]
	}

	subscribers := make([]func(Entry), len(b.subscribers))
	copy(subscribers, b.subscribers)
	watchers := make([]chan Entry, len(b.watchers))
	copy(watchers, b.watchers)

	b.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- e:
		default:
			// Skip if channel is full
		}
	}
	for _, fn := range subscribers {
		fn(e)
	}
}

// Entries returns a snapshot of the stored entries. With redacted=true
// each entry is re-redacted before being returned. With redacted=false
// the ingest-time text is returned as-is; if redaction on ingest was
// enabled, that text is itself already redacted and the original is
// gone.
func (b *Buffer) Entries(redacted bool) []Entry {
	b.mu.Lock()
	snapshot := make([]Entry, len(b.entries))
	copy(snapshot, b.entries)
	engine := b.engine
	b.mu.Unlock()

	if redacted && engine != nil {
		for i := range snapshot {
			snapshot[i] = redactEntry(engine, snapshot[i])
		}
	}

	return snapshot
}

// Len returns the number of stored entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries)
}

// Clear empties the buffer. Level, capacity and redaction configuration
// are untouched.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = b.entries[:0]
}

// Text renders the buffer as console text, one formatted entry per line
// (failure details occupy a following line).
func (b *Buffer) Text(redacted bool) string {
	entries := b.Entries(redacted)

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Format()
	}

	return strings.Join(lines, "\n")
}

// SetMinLevel changes the ingest filter level.
func (b *Buffer) SetMinLevel(level Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.minLevel = level
}

// MinLevel returns the current ingest filter level.
func (b *Buffer) MinLevel() Level {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.minLevel
}

// SetRedactOnIngest toggles redaction at ingest time. Entries already
// stored are unaffected.
func (b *Buffer) SetRedactOnIngest(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.redactOnIngest = on
	if on && b.engine == nil {
		b.engine = redact.NewEngine()
	}
}

// Subscribe registers a callback invoked for every stored entry. The
// callback runs on the logging goroutine; UI consumers should marshal to
// their own loop.
func (b *Buffer) Subscribe(fn func(Entry)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, fn)
}

// Watch returns a channel receiving stored entries. Sends are
// non-blocking: a full channel drops the notification, not the entry.
func (b *Buffer) Watch() <-chan Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Entry, 100)
	b.watchers = append(b.watchers, ch)

	return ch
}

// Unwatch removes a watcher channel and closes it.
func (b *Buffer) Unwatch(ch <-chan Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, watcher := range b.watchers {
		if watcher == ch {
			close(watcher)
			b.watchers = append(b.watchers[:i], b.watchers[i+1:]...)
			break
		}
	}
}

func redactEntry(engine *redact.Engine, e Entry) Entry {
	e.Message = engine.Redact(e.Message)
	if e.Failure != nil {
		detail := e.Failure.Error()
		if scrubbed := engine.Redact(detail); scrubbed != detail {
			e.Failure = fmt.Errorf("%s", scrubbed)
		}
	}

	return e
}
