package console

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdeck/workdeck/internal/redact"
)

func entryAt(level Level, msg string) Entry {
	return Entry{
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:     level,
		Category:  "App",
		Message:   msg,
	}
}

func TestBuffer_FIFOEviction(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 3})

	for _, msg := range []string{"A", "B", "C", "D"} {
		buffer.AddEntry(entryAt(LevelInfo, msg))
	}

	entries := buffer.Entries(false)
	require.Len(t, entries, 3)
	assert.Equal(t, "B", entries[0].Message)
	assert.Equal(t, "C", entries[1].Message)
	assert.Equal(t, "D", entries[2].Message)
}

func TestBuffer_NeverExceedsCapacity(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 5})

	for i := 0; i < 100; i++ {
		buffer.AddEntry(entryAt(LevelInfo, fmt.Sprintf("msg-%d", i)))
		assert.LessOrEqual(t, buffer.Len(), 5)
	}

	entries := buffer.Entries(false)
	require.Len(t, entries, 5)
	// Oldest evicted first.
	assert.Equal(t, "msg-95", entries[0].Message)
	assert.Equal(t, "msg-99", entries[4].Message)
}

func TestBuffer_MinLevelFilter(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10, MinLevel: LevelWarning})

	notified := 0
	buffer.Subscribe(func(Entry) { notified++ })

	buffer.AddEntry(entryAt(LevelDebug, "dropped"))
	buffer.AddEntry(entryAt(LevelInfo, "dropped too"))
	buffer.AddEntry(entryAt(LevelWarning, "kept"))
	buffer.AddEntry(entryAt(LevelCritical, "kept too"))

	entries := buffer.Entries(false)
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0].Message)
	// Dropped entries fire no notification.
	assert.Equal(t, 2, notified)
}

func TestBuffer_RedactOnIngest(t *testing.T) {
	buffer := NewBuffer(Options{
		MaxEntries:     10,
		RedactOnIngest: true,
		Engine:         redact.NewEngine(),
	})

	buffer.AddEntry(entryAt(LevelInfo, "connect with password=secret123"))

	// The stored copy is the ingest-time redaction; the original is not
	// recoverable even with redacted=false.
	for _, redacted := range []bool{true, false} {
		entries := buffer.Entries(redacted)
		require.Len(t, entries, 1)
		assert.NotContains(t, entries[0].Message, "secret123")
		assert.Contains(t, entries[0].Message, redact.Placeholder)
	}
}

func TestBuffer_RedactedReadWithoutIngestRedaction(t *testing.T) {
	buffer := NewBuffer(Options{
		MaxEntries: 10,
		Engine:     redact.NewEngine(),
	})

	buffer.AddEntry(entryAt(LevelInfo, "connect with password=secret123"))

	// Stored raw, so the unredacted read still has the secret...
	raw := buffer.Entries(false)
	require.Len(t, raw, 1)
	assert.Contains(t, raw[0].Message, "secret123")

	// ...and the redacted read scrubs it on the way out.
	scrubbed := buffer.Entries(true)
	require.Len(t, scrubbed, 1)
	assert.NotContains(t, scrubbed[0].Message, "secret123")
}

func TestBuffer_RedactsFailureDetail(t *testing.T) {
	buffer := NewBuffer(Options{
		MaxEntries:     10,
		RedactOnIngest: true,
	})

	buffer.AddEntry(Entry{
		Level:    LevelError,
		Category: "DB",
		Message:  "connection failed",
		Failure:  fmt.Errorf("dial error: Server=db;Password=p@ss;"),
	})

	entries := buffer.Entries(false)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Failure)
	assert.NotContains(t, entries[0].Failure.Error(), "p@ss")
}

func TestBuffer_Clear(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10, MinLevel: LevelWarning})

	buffer.AddEntry(entryAt(LevelError, "one"))
	buffer.AddEntry(entryAt(LevelError, "two"))
	require.Equal(t, 2, buffer.Len())

	buffer.Clear()
	assert.Equal(t, 0, buffer.Len())

	// Configuration survives a clear.
	assert.Equal(t, LevelWarning, buffer.MinLevel())
	buffer.AddEntry(entryAt(LevelInfo, "still filtered"))
	assert.Equal(t, 0, buffer.Len())
}

func TestBuffer_Text(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10})

	buffer.AddEntry(entryAt(LevelInfo, "workspace opened"))
	buffer.AddEntry(Entry{
		Timestamp: time.Date(2025, 3, 14, 9, 26, 54, 0, time.UTC),
		Level:     LevelError,
		Category:  "Import",
		Message:   "read failed",
		Failure:   fmt.Errorf("open orders.csv: no such file"),
	})

	text := buffer.Text(false)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[09:26:53] [INF] App: workspace opened", lines[0])
	assert.Equal(t, "[09:26:54] [ERR] Import: read failed", lines[1])
	assert.Equal(t, "open orders.csv: no such file", lines[2])
}

func TestBuffer_TextRedacted(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10, Engine: redact.NewEngine()})

	buffer.AddEntry(entryAt(LevelInfo, "auth with token: abc123def456"))

	assert.Contains(t, buffer.Text(false), "abc123def456")
	assert.NotContains(t, buffer.Text(true), "abc123def456")
}

func TestBuffer_SubscribeSeesStoredEntry(t *testing.T) {
	buffer := NewBuffer(Options{
		MaxEntries:     10,
		RedactOnIngest: true,
	})

	var got []Entry
	buffer.Subscribe(func(e Entry) { got = append(got, e) })

	buffer.AddEntry(entryAt(LevelInfo, "password=secret123"))

	require.Len(t, got, 1)
	// Observers receive the stored (redacted) entry, not the raw one.
	assert.NotContains(t, got[0].Message, "secret123")
}

func TestBuffer_WatchUnwatch(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10})

	ch := buffer.Watch()
	buffer.AddEntry(entryAt(LevelInfo, "hello"))

	select {
	case e := <-ch:
		assert.Equal(t, "hello", e.Message)
	case <-time.After(time.Second):
		t.Fatal("expected watcher notification")
	}

	buffer.Unwatch(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestBuffer_SetRedactOnIngest(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10})

	buffer.AddEntry(entryAt(LevelInfo, "password=before1"))
	buffer.SetRedactOnIngest(true)
	buffer.AddEntry(entryAt(LevelInfo, "password=after22"))

	entries := buffer.Entries(false)
	require.Len(t, entries, 2)
	// Already-stored entries keep their ingest-time text.
	assert.Contains(t, entries[0].Message, "before1")
	assert.NotContains(t, entries[1].Message, "after22")
}

func TestBuffer_ConcurrentWriters(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				buffer.AddEntry(entryAt(LevelInfo, fmt.Sprintf("g%d-%d", g, i)))
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 50, buffer.Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"trace", LevelTrace},
		{"TRC", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarning},
		{"WRN", LevelWarning},
		{"error", LevelError},
		{"critical", LevelCritical},
		{"CRT", LevelCritical},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevel_Strings(t *testing.T) {
	assert.Equal(t, "WARNING", LevelWarning.String())
	assert.Equal(t, "WRN", LevelWarning.Abbrev())
	assert.Equal(t, "TRC", LevelTrace.Abbrev())
	assert.Equal(t, "CRT", LevelCritical.Abbrev())
}
