// Package course fetches a course's caption archive and lecture captions from
// the content host and maps archive members to caption and output names.
package course

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"coursecaptions/internal/logging"
	"coursecaptions/internal/services"
	"coursecaptions/internal/services/httpretry"
)

const defaultTimeout = 60 * time.Second

// Config describes the remote layout: <BaseURL>/<course>/<ArchiveName> and
// <BaseURL>/<course>/<caption file>.
type Config struct {
	BaseURL          string
	ArchiveName      string
	CaptionExtension string
	Timeout          time.Duration
}

// ArchiveSource retrieves the raw files of one course.
type ArchiveSource interface {
	FetchArchive(ctx context.Context) ([]byte, error)
	FetchCaption(ctx context.Context, name string) ([]byte, error)
}

// HTTPSource downloads course files over HTTP.
type HTTPSource struct {
	cfg    Config
	course string
	client *http.Client
	logger *slog.Logger
}

// Option customizes an HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPSource returns a source for the given course slug.
func NewHTTPSource(cfg Config, course string, opts ...Option) (*HTTPSource, error) {
	course = strings.TrimSpace(course)
	if err := ValidateSlug(course); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "course", "source", "base url required", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	source := &HTTPSource{
		cfg:    cfg,
		course: course,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

// Course returns the course slug.
func (s *HTTPSource) Course() string {
	return s.course
}

// ArchiveURL returns the location of the caption archive.
func (s *HTTPSource) ArchiveURL() (string, error) {
	return url.JoinPath(s.cfg.BaseURL, s.course, s.cfg.ArchiveName)
}

// FetchArchive downloads the course's caption archive.
func (s *HTTPSource) FetchArchive(ctx context.Context) ([]byte, error) {
	target, err := s.ArchiveURL()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "course", "fetch archive", "build url", err)
	}
	return s.get(ctx, "fetch archive", target)
}

// FetchCaption downloads one caption file by name, as returned by CaptionName.
func (s *HTTPSource) FetchCaption(ctx context.Context, name string) ([]byte, error) {
	target, err := url.JoinPath(s.cfg.BaseURL, s.course, name)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "course", "fetch caption", "build url", err)
	}
	return s.get(ctx, "fetch caption", target)
}

func (s *HTTPSource) get(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "course", op, "new request", err)
	}
	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		marker := services.ErrTransient
		if ctx.Err() == nil && isTimeout(err) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "course", op, target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		// The host answers 403 for unknown S3 keys.
		return nil, services.Wrap(services.ErrNotFound, "course", op, fmt.Sprintf("%s: http %d", target, resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, services.Wrap(services.ErrTransient, "course", op, target, httpretry.NewStatusError("course host", resp, body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "course", op, "read body", err)
	}
	s.logger.Debug("course file downloaded",
		logging.String("url", target),
		logging.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return data, nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	t, ok := err.(timeout)
	return ok && t.Timeout()
}

// ValidateSlug rejects course names that would escape the work directory or
// the remote course path.
func ValidateSlug(course string) error {
	switch {
	case course == "":
		return services.Wrap(services.ErrValidation, "course", "validate", "course name required", nil)
	case course == "." || course == "..",
		strings.ContainsAny(course, `/\?#%`),
		path.Clean(course) != course:
		return services.Wrap(services.ErrValidation, "course", "validate", fmt.Sprintf("invalid course name %q", course), nil)
	}
	return nil
}
