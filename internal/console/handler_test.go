package console

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_RecordsEntries(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10})
	logger := slog.New(NewHandler(buffer, "App"))

	logger.Info("workspace opened")
	logger.Error("import failed", "error", "open orders.csv: no such file")

	entries := buffer.Entries(false)
	require.Len(t, entries, 2)

	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "App", entries[0].Category)
	assert.Equal(t, "workspace opened", entries[0].Message)

	assert.Equal(t, LevelError, entries[1].Level)
	require.NotNil(t, entries[1].Failure)
	assert.Equal(t, "open orders.csv: no such file", entries[1].Failure.Error())
}

func TestHandler_ComponentAttr(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10})
	logger := slog.New(NewHandler(buffer, "App"))

	logger.Info("rows loaded", "component", "Import")

	entries := buffer.Entries(false)
	require.Len(t, entries, 1)
	assert.Equal(t, "Import", entries[0].Category)
}

func TestHandler_WithAttrs(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10})
	logger := slog.New(NewHandler(buffer, "App")).With("component", "Console")

	logger.Warn("buffer nearly full")

	entries := buffer.Entries(false)
	require.Len(t, entries, 1)
	assert.Equal(t, LevelWarning, entries[0].Level)
	assert.Equal(t, "Console", entries[0].Category)
}

func TestHandler_RespectsBufferFilter(t *testing.T) {
	buffer := NewBuffer(Options{MaxEntries: 10, MinLevel: LevelError})
	handler := NewHandler(buffer, "App")
	logger := slog.New(handler)

	assert.False(t, handler.Enabled(nil, slog.LevelInfo))
	assert.True(t, handler.Enabled(nil, slog.LevelError))

	logger.Info("dropped")
	logger.Error("kept", "error", fmt.Sprintf("code %d", 7))

	entries := buffer.Entries(false)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}
