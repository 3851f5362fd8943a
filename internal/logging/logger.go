// Package logging provides structured logging for Workdeck. The logger
// writes to a terminal handler and, when wired, tees every record into
// the debug console buffer.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/workdeck/workdeck/internal/console"
)

// Logger interface for structured logging.
type Logger interface {
	Trace(ctx context.Context, msg string, fields ...interface{})
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// Config holds logger configuration.
type Config struct {
	Level  console.Level
	Format string // "json" or "text"
	Output io.Writer
	// Buffer, when set, receives every record as a console entry.
	Buffer *console.Buffer
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  console.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// WorkdeckLogger implements Logger over slog.
type WorkdeckLogger struct {
	logger *slog.Logger
	level  console.Level
}

// New creates a logger from config. A nil config selects the defaults.
func New(config *Config) *WorkdeckLogger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.ToSlog()}

	var terminal slog.Handler
	if config.Format == "json" {
		terminal = slog.NewJSONHandler(config.Output, opts)
	} else {
		terminal = slog.NewTextHandler(config.Output, opts)
	}

	handler := terminal
	if config.Buffer != nil {
		handler = NewFanoutHandler(terminal, console.NewHandler(config.Buffer, "App"))
	}

	return &WorkdeckLogger{
		logger: slog.New(handler),
		level:  config.Level,
	}
}

// Trace logs a trace message.
func (l *WorkdeckLogger) Trace(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, console.LevelTrace, nil, msg, fields...)
}

// Debug logs a debug message.
func (l *WorkdeckLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, console.LevelDebug, nil, msg, fields...)
}

// Info logs an info message.
func (l *WorkdeckLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, console.LevelInfo, nil, msg, fields...)
}

// Warn logs a warning message.
func (l *WorkdeckLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, console.LevelWarning, err, msg, fields...)
}

// Error logs an error message.
func (l *WorkdeckLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, console.LevelError, err, msg, fields...)
}

// With creates a new logger with additional fields.
func (l *WorkdeckLogger) With(fields ...interface{}) Logger {
	return &WorkdeckLogger{
		logger: l.logger.With(fields...),
		level:  l.level,
	}
}

// WithComponent creates a new logger with component context. The
// component becomes the entry category in the debug console.
func (l *WorkdeckLogger) WithComponent(component string) Logger {
	return l.With("component", component)
}

func (l *WorkdeckLogger) log(ctx context.Context, level console.Level, err error, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
	}

	l.logger.Log(ctx, level.ToSlog(), msg, fields...)
}

// FanoutHandler duplicates records to multiple handlers.
type FanoutHandler struct {
	handlers []slog.Handler
}

var _ slog.Handler = (*FanoutHandler)(nil)

// NewFanoutHandler creates a handler writing to every given handler.
func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

// Enabled reports whether any handler accepts the level.
func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle forwards the record to every handler that accepts its level.
func (f *FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// WithAttrs forwards the attributes to every handler.
func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &FanoutHandler{handlers: handlers}
}

// WithGroup forwards the group to every handler.
func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &FanoutHandler{handlers: handlers}
}
