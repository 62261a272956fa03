package logging

import (
	"context"
	"log/slog"

	"coursecaptions/internal/services"
)

// ContextFields extracts run metadata stored on ctx as log attributes.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if runID, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRunID, runID))
	}
	if course, ok := services.CourseFromContext(ctx); ok {
		attrs = append(attrs, String(FieldCourse, course))
	}
	if lecture, ok := services.LectureFromContext(ctx); ok {
		attrs = append(attrs, String(FieldLecture, lecture))
	}
	return attrs
}

// WithContext returns a logger annotated with the run metadata on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
