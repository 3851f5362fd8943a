// Package server exposes the debug console over HTTP: the captured log
// text, a compressed archive download, and a websocket stream of live
// entries for external console viewers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/workdeck/workdeck/internal/console"
	"github.com/workdeck/workdeck/internal/logging"
)

// Options configures the console server.
type Options struct {
	Host string
	Port int
	// AllowedOrigins for websocket connections. Empty means same-host
	// only.
	AllowedOrigins []string
}

// Server serves the debug console endpoints.
type Server struct {
	buffer  *console.Buffer
	logger  logging.Logger
	opts    Options
	httpSrv *http.Server
}

// New creates a console server over buffer.
func New(buffer *console.Buffer, logger logging.Logger, opts Options) *Server {
	return &Server{
		buffer: buffer,
		logger: logger.WithComponent("ConsoleServer"),
		opts:   opts,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, fmt.Sprintf("%d", s.opts.Port))
}

// Routes returns the handler serving the console endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("GET /logs/archive", s.handleArchive)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()

	s.logger.Info(ctx, "console server listening", "addr", s.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// handleLogs serves the console text. redacted defaults to on and is
// disabled only with an explicit redacted=0.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	redacted := r.URL.Query().Get("redacted") != "0"

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, s.buffer.Text(redacted))
}

// handleArchive serves the gzip export.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	redacted := r.URL.Query().Get("redacted") != "0"

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="workdeck-logs.txt.gz"`)

	if err := s.buffer.WriteArchive(w, redacted); err != nil {
		s.logger.Error(r.Context(), err, "archive write failed")
	}
}

// wireEntry is the JSON shape of a streamed entry.
type wireEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Failure   string    `json:"failure,omitempty"`
}

func toWire(e console.Entry) wireEntry {
	we := wireEntry{
		Timestamp: e.Timestamp,
		Level:     e.Level.Abbrev(),
		Category:  e.Category,
		Message:   e.Message,
	}
	if e.Failure != nil {
		we.Failure = e.Failure.Error()
	}

	return we
}

// handleWebSocket streams live entries to the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.AllowedOrigins,
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	entries := s.buffer.Watch()
	defer s.buffer.Unwatch(entries)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}

			payload, err := json.Marshal(toWire(entry))
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
