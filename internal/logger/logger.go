package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lepinkainen/humanlog"
)

// RequestIDFunc extracts a request id from a context, or "" when absent.
type RequestIDFunc func(ctx context.Context) string

// ParseLevel maps debug|info|warn|error onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger writing to w in the given format (json, text or human).
// Every record logged with a context carrying a request id gets a request_id attribute.
func New(w io.Writer, lvl slog.Level, format string, requestID RequestIDFunc) (*slog.Logger, error) {
	ho := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch format {
	case "json":
		h = slog.NewJSONHandler(w, ho)
	case "text", "":
		h = slog.NewTextHandler(w, ho)
	case "human":
		h = humanlog.NewHandler(w, &humanlog.Options{Level: lvl})
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json, text or human, got %q", format)
	}

	return slog.New(&handler{base: h, requestID: requestID}), nil
}

// Setup installs a logger built by New as the slog default.
func Setup(w io.Writer, lvl slog.Level, format string, requestID RequestIDFunc) error {
	l, err := New(w, lvl, format, requestID)
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	return nil
}

type handler struct {
	base      slog.Handler
	requestID RequestIDFunc
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, record slog.Record) error {
	if h.requestID != nil && ctx != nil {
		if id := h.requestID(ctx); id != "" {
			record = record.Clone()
			record.AddAttrs(slog.String("request_id", id))
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{base: h.base.WithAttrs(attrs), requestID: h.requestID}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{base: h.base.WithGroup(name), requestID: h.requestID}
}
