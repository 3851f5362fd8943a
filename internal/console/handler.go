package console

import (
	"context"
	"fmt"
	"log/slog"
)

// Handler is a slog.Handler that records every log record as a buffer
// entry, so application logging lands in the debug console. It is meant
// to sit beside a terminal handler in a fan-out.
type Handler struct {
	buffer   *Buffer
	category string
	attrs    []slog.Attr
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler creates a handler recording into buffer. The fallback
// category is used when a record carries no component attribute.
func NewHandler(buffer *Buffer, category string) *Handler {
	return &Handler{buffer: buffer, category: category}
}

// Enabled reports whether the buffer would keep a record at this level.
// The buffer applies its own filter again at ingest; this only avoids
// building records that are certain to be dropped.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return FromSlog(level) >= h.buffer.MinLevel()
}

// Handle converts the record into an Entry.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	category := h.category
	var failure error

	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "component", "category":
			if s := a.Value.String(); s != "" {
				category = s
			}
		case "error":
			failure = fmt.Errorf("%s", a.Value.String())
		}
		return true
	}

	for _, a := range h.attrs {
		collect(a)
	}
	record.Attrs(collect)

	h.buffer.AddEntry(Entry{
		Timestamp: record.Time,
		Level:     FromSlog(record.Level),
		Category:  category,
		Message:   record.Message,
		Failure:   failure,
	})

	return nil
}

// WithAttrs returns a handler carrying the additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)

	return &Handler{buffer: h.buffer, category: h.category, attrs: combined}
}

// WithGroup is accepted but groups are flattened: the console renders a
// single message line per record.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}
