// Package logtest provides an slog handler that records log entries for
// assertions in tests.
package logtest

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is one recorded log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Handler records every record it handles. It is safe for concurrent use.
type Handler struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
}

// New returns an empty recording handler.
func New() *Handler {
	return &Handler{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

// Logger returns a logger writing to h.
func (h *Handler) Logger() *slog.Logger {
	return slog.New(h)
}

func (h *Handler) Enabled(context.Context, slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: map[string]string{}}
	for _, a := range h.attrs {
		e.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.String()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, e)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		mu:      h.mu,
		entries: h.entries,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of everything recorded so far.
func (h *Handler) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry{}, *h.entries...)
}

// Find returns the recorded entries with the given message.
func (h *Handler) Find(msg string) []Entry {
	var out []Entry
	for _, e := range h.Entries() {
		if e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}
