package logging

import (
	"context"
	"log/slog"
)

// Field names shared by every handler.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldCourse    = "course"
	FieldLecture   = "lecture"
)

// NoopHandler discards every record.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h NoopHandler) WithGroup(string) slog.Handler { return h }

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags the logger with a component name.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		base = NewNop()
	}
	if component == "" {
		return base
	}
	return base.With(String(FieldComponent, component))
}

// String builds a string attribute.
func String(key, value string) slog.Attr { return slog.String(key, value) }

// Int builds an int attribute.
func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

// Error builds an error attribute under the "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Args converts attributes into the variadic form slog.Logger methods accept.
func Args(attrs ...slog.Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		out = append(out, attr)
	}
	return out
}
