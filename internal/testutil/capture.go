package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogCapture collects log records for assertions.
type LogCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

// Messages returns the messages logged so far.
func (c *LogCapture) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]string, len(c.records))
	for i, r := range c.records {
		msgs[i] = r.Message
	}
	return msgs
}

type captureHandler struct {
	store *LogCapture
	attrs []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{store: h.store, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }
