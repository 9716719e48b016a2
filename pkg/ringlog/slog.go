package ringlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Handler is a slog.Handler that records into a Logger's ring. The "target"
// attribute (or the innermost group name) becomes the entry's source tag.
type Handler struct {
	logger *Logger
	target string
	attrs  []slog.Attr
}

// NewHandler returns a slog handler backed by l.
func NewHandler(l *Logger) *Handler {
	return &Handler{logger: l}
}

func fromSlog(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	case level >= slog.LevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(fromSlog(level))
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	target := h.target
	var b strings.Builder
	b.WriteString(r.Message)

	write := func(a slog.Attr) bool {
		if a.Key == "target" {
			target = a.Value.String()
			return true
		}
		if a.Equal(slog.Attr{}) {
			return true
		}
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)

	h.logger.Log(fromSlog(r.Level), Category(target), b.String())
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &n
}

// WithGroup implements slog.Handler. Groups set the target rather than
// prefixing keys.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.target = name
	return &n
}
