package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds a JSON slog logger that stamps every record carrying an
// active span with its trace and span IDs, so log lines can be joined with
// traces in the backend.
func NewLogger(level slog.Level) *slog.Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter is NewLogger with an explicit output, used by tests.
func NewLoggerWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(&spanContextHandler{base: base})
}

// spanContextHandler decorates a slog.Handler with trace correlation. Own
// attributes and groups are replayed onto the base handler after the trace
// IDs, keeping the IDs at the record's top level.
type spanContextHandler struct {
	base   slog.Handler
	attrs  []slog.Attr
	groups []string
}

func (h *spanContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *spanContextHandler) Handle(ctx context.Context, record slog.Record) error {
	out := h.base

	if traceID := TraceID(ctx); traceID != "" {
		ids := []slog.Attr{slog.String("trace_id", traceID)}
		if spanID := SpanID(ctx); spanID != "" {
			ids = append(ids, slog.String("span_id", spanID))
		}
		out = out.WithAttrs(ids)
	}

	if len(h.attrs) > 0 {
		out = out.WithAttrs(h.attrs)
	}
	for _, group := range h.groups {
		out = out.WithGroup(group)
	}

	return out.Handle(ctx, record)
}

func (h *spanContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)

	return &spanContextHandler{base: h.base, attrs: combined, groups: h.groups}
}

func (h *spanContextHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)

	return &spanContextHandler{base: h.base, attrs: h.attrs, groups: groups}
}
