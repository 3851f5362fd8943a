package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdeck/workdeck/internal/console"
	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/redact"
)

func newTestServer(t *testing.T) (*Server, *console.Buffer, *httptest.Server) {
	t.Helper()

	buffer := console.NewBuffer(console.Options{MaxEntries: 100, Engine: redact.NewEngine()})
	logger := logging.New(&logging.Config{Level: console.LevelError, Output: io.Discard})
	srv := New(buffer, logger, Options{Host: "localhost", Port: 0})

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return srv, buffer, ts
}

func addEntry(buffer *console.Buffer, msg string) {
	buffer.AddEntry(console.Entry{
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:     console.LevelInfo,
		Category:  "App",
		Message:   msg,
	})
}

func TestHandleLogs(t *testing.T) {
	_, buffer, ts := newTestServer(t)
	addEntry(buffer, "workspace opened")

	resp, err := http.Get(ts.URL + "/logs")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "[09:26:53] [INF] App: workspace opened")
}

func TestHandleLogs_RedactedByDefault(t *testing.T) {
	_, buffer, ts := newTestServer(t)
	addEntry(buffer, "password=secret123")

	resp, err := http.Get(ts.URL + "/logs")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "secret123")

	// Explicit opt-out returns the stored text.
	resp2, err := http.Get(ts.URL + "/logs?redacted=0")
	require.NoError(t, err)
	defer resp2.Body.Close()

	body2, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body2), "secret123")
}

func TestHandleArchive(t *testing.T) {
	_, buffer, ts := newTestServer(t)
	addEntry(buffer, "archived line")

	resp, err := http.Get(ts.URL + "/logs/archive")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/gzip", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	text, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(text), "archived line")
}

func TestHandleWebSocket_StreamsEntries(t *testing.T) {
	_, buffer, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Give the handler time to subscribe before producing.
	time.Sleep(50 * time.Millisecond)
	addEntry(buffer, "live entry")

	_, payload, err := conn.Read(ctx)
	require.NoError(t, err)

	var entry wireEntry
	require.NoError(t, json.Unmarshal(payload, &entry))
	assert.Equal(t, "INF", entry.Level)
	assert.Equal(t, "App", entry.Category)
	assert.Equal(t, "live entry", entry.Message)
}

func TestAddr(t *testing.T) {
	srv, _, _ := newTestServer(t)
	assert.Equal(t, "localhost:0", srv.Addr())
}
