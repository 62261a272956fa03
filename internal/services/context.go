package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	courseKey  contextKey = "course"
	lectureKey contextKey = "lecture"
)

// WithRunID annotates context with the ledger run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCourse annotates context with the course slug.
func WithCourse(ctx context.Context, course string) context.Context {
	if course == "" {
		return ctx
	}
	return context.WithValue(ctx, courseKey, course)
}

// CourseFromContext returns the course slug if present.
func CourseFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(courseKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithLecture annotates context with the archive member being processed.
func WithLecture(ctx context.Context, lecture string) context.Context {
	if lecture == "" {
		return ctx
	}
	return context.WithValue(ctx, lectureKey, lecture)
}

// LectureFromContext returns the lecture name if present.
func LectureFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(lectureKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
