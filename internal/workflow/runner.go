package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"coursecaptions/internal/config"
	"coursecaptions/internal/course"
	"coursecaptions/internal/fileutil"
	"coursecaptions/internal/language"
	"coursecaptions/internal/ledger"
	"coursecaptions/internal/logging"
	"coursecaptions/internal/notifications"
	"coursecaptions/internal/services"
	"coursecaptions/internal/translate"
)

const lockFileName = ".lock"

// ErrCourseLocked is returned when another run holds the course lock.
var ErrCourseLocked = errors.New("course is already being translated")

// SourceFactory creates the archive source for a course slug.
type SourceFactory func(slug string) (course.ArchiveSource, error)

// Runner translates whole courses and records the outcome in the ledger.
type Runner struct {
	cfg        *config.Config
	store      *ledger.Store
	logger     *slog.Logger
	provider   translate.Provider
	sources    SourceFactory
	httpClient *http.Client
	notifier   notifications.Service
}

// Option customizes a Runner.
type Option func(*Runner)

// WithProvider replaces the provider built from configuration.
func WithProvider(provider translate.Provider) Option {
	return func(r *Runner) {
		r.provider = provider
	}
}

// WithSourceFactory replaces the HTTP course source.
func WithSourceFactory(factory SourceFactory) Option {
	return func(r *Runner) {
		if factory != nil {
			r.sources = factory
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNotifier overrides the notifier built from configuration.
func WithNotifier(notifier notifications.Service) Option {
	return func(r *Runner) {
		r.notifier = notifier
	}
}

// WithHTTPClient sets the HTTP client used by the default source and providers.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Runner) {
		r.httpClient = client
	}
}

// NewRunner constructs a runner. store may be nil for TranslateFile-only use.
func NewRunner(cfg *config.Config, store *ledger.Store, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "workflow")
	if r.sources == nil {
		r.sources = r.httpSource
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(cfg)
	}
	return r
}

// RunOptions adjusts a single course run.
type RunOptions struct {
	// TargetLanguage overrides translation.target_language.
	TargetLanguage string
	// Force retranslates lectures that already have output.
	Force bool
	// FailFast stops the run at the first failed lecture.
	FailFast bool
	// Concurrency overrides translation.concurrency when non-zero.
	Concurrency int
}

// Failure describes one lecture that could not be translated.
type Failure struct {
	Member string
	Kind   string
	Err    error
}

// Summary reports the outcome of a course run.
type Summary struct {
	RunID          string
	Course         string
	TargetLanguage string
	Total          int
	Translated     int
	Skipped        int
	Failed         int
	Failures       []Failure
	Duration       time.Duration
}

// Status maps the summary to the run status stored in the ledger.
func (s *Summary) Status(runErr error) ledger.RunStatus {
	switch {
	case errors.Is(runErr, context.Canceled):
		return ledger.RunCancelled
	case runErr != nil && s.Failed == 0:
		return ledger.RunFailed
	case s.Failed > 0 && s.Translated+s.Skipped > 0:
		return ledger.RunPartial
	case s.Failed > 0:
		return ledger.RunFailed
	case s.Translated+s.Skipped < s.Total:
		return ledger.RunCancelled
	default:
		return ledger.RunCompleted
	}
}

func (s *Summary) counts() ledger.RunCounts {
	return ledger.RunCounts{
		Total:      s.Total,
		Translated: s.Translated,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
	}
}

func (s *Summary) record(outcome lectureOutcome) {
	switch outcome.status {
	case ledger.LectureTranslated:
		s.Translated++
	case ledger.LectureSkipped:
		s.Skipped++
	case ledger.LectureFailed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{
			Member: outcome.member,
			Kind:   services.FailureKind(outcome.err),
			Err:    outcome.err,
		})
	}
}

// Run translates every lecture of slug. The returned summary is non-nil once
// the run has been registered in the ledger, including when an error is
// returned. Lecture failures are reported through the summary; an error is
// returned only when the run could not proceed, was cancelled, or stopped on
// the first failure with RunOptions.FailFast.
func (r *Runner) Run(ctx context.Context, slug string, opts RunOptions) (*Summary, error) {
	started := time.Now()
	if r.store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "run", "ledger not configured", nil)
	}
	if err := course.ValidateSlug(slug); err != nil {
		return nil, err
	}
	if opts.Concurrency != 0 {
		if err := config.ValidateConcurrency("concurrency", opts.Concurrency); err != nil {
			return nil, services.Wrap(services.ErrValidation, "workflow", "run", "", err)
		}
	}
	target, err := r.resolveTarget(opts.TargetLanguage)
	if err != nil {
		return nil, err
	}
	provider, err := r.resolveProvider()
	if err != nil {
		return nil, err
	}
	source, err := r.sources(slug)
	if err != nil {
		return nil, err
	}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	courseDir := r.cfg.CourseDir(slug)
	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create course directory: %w", err)
	}
	lock, err := lockCourse(courseDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release course lock", logging.Error(err))
		}
	}()

	if stale, err := r.store.MarkStaleRuns(ctx, slug); err != nil {
		return nil, err
	} else if stale > 0 {
		r.logger.Warn("marked unfinished runs as cancelled", logging.String(logging.FieldCourse, slug), slog.Int64("runs", stale))
	}

	run, err := r.store.StartRun(ctx, slug, target, r.cfg.Translation.Provider)
	if err != nil {
		return nil, err
	}
	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithCourse(ctx, slug)
	logger := logging.WithContext(ctx, r.logger)

	summary := &Summary{
		RunID:          run.ID,
		Course:         slug,
		TargetLanguage: target,
	}
	logger.Info("course run started",
		logging.String("target_language", target),
		logging.String("provider", r.cfg.Translation.Provider),
	)

	runErr := r.translateCourse(ctx, logger, source, provider, summary, opts)
	summary.Duration = time.Since(started)
	status := summary.Status(runErr)
	if err := r.store.FinishRun(context.WithoutCancel(ctx), run.ID, status, summary.counts(), runErr); err != nil {
		logger.Error("failed to record run outcome", logging.Error(err))
	}
	r.notify(context.WithoutCancel(ctx), logger, summary, status, runErr)

	attrs := []slog.Attr{
		logging.Int("translated", summary.Translated),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		slog.Duration("elapsed", summary.Duration),
	}
	switch {
	case runErr != nil:
		logger.Error("course run stopped", logging.Args(append(attrs, logging.Error(runErr))...)...)
	case summary.Failed > 0:
		logger.Warn("course run finished with failures", logging.Args(attrs...)...)
	default:
		logger.Info("course run finished", logging.Args(attrs...)...)
	}
	return summary, runErr
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, summary *Summary, status ledger.RunStatus, runErr error) {
	var err error
	switch {
	case status == ledger.RunCancelled:
		return
	case runErr != nil:
		err = r.notifier.NotifyRunFailed(ctx, summary.Course, runErr)
	default:
		err = r.notifier.NotifyRunCompleted(ctx, notifications.RunReport{
			Course:         summary.Course,
			TargetLanguage: summary.TargetLanguage,
			Status:         string(status),
			Total:          summary.Total,
			Translated:     summary.Translated,
			Skipped:        summary.Skipped,
			Failed:         summary.Failed,
			Duration:       summary.Duration,
		})
	}
	if err != nil {
		logger.Warn("run notification failed", logging.Error(err))
	}
}

func (r *Runner) translateCourse(ctx context.Context, logger *slog.Logger, source course.ArchiveSource, provider translate.Provider, summary *Summary, opts RunOptions) error {
	members, err := r.fetchMembers(ctx, source, summary.Course)
	if err != nil {
		return err
	}
	summary.Total = len(members)
	if len(members) == 0 {
		logger.Warn("caption archive has no lectures")
		return nil
	}

	pipeline := translate.NewPipeline(provider,
		translate.WithShardPolicy(ShardPolicy(r.cfg)),
		translate.WithLogger(r.logger),
	)
	failFast := opts.FailFast || !r.cfg.Translation.ContinueOnError
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = r.cfg.Translation.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	var mu sync.Mutex
	for _, member := range members {
		job := lectureJob{
			course:   summary.Course,
			member:   member,
			target:   summary.TargetLanguage,
			force:    opts.Force,
			source:   source,
			pipeline: pipeline,
		}
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			outcome := r.processLecture(groupCtx, job)
			mu.Lock()
			summary.record(outcome)
			mu.Unlock()
			if outcome.err != nil && failFast {
				return fmt.Errorf("lecture %s: %w", member, outcome.err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Runner) fetchMembers(ctx context.Context, source course.ArchiveSource, slug string) ([]string, error) {
	archive, err := source.FetchArchive(ctx)
	if err != nil {
		return nil, err
	}
	archivePath := filepath.Join(r.cfg.CourseDir(slug), r.cfg.Source.ArchiveName)
	if err := fileutil.WriteFileAtomic(archivePath, archive, 0o644); err != nil {
		return nil, services.Wrap(services.ErrTransient, "workflow", "save archive", archivePath, err)
	}
	return course.ListMembers(archive)
}

func (r *Runner) resolveTarget(override string) (string, error) {
	target := strings.TrimSpace(override)
	if target == "" {
		target = r.cfg.Translation.TargetLanguage
	}
	canonical, err := language.Canonical(target)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "workflow", "target language", target, err)
	}
	return canonical, nil
}

func (r *Runner) resolveProvider() (translate.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	return NewProvider(r.cfg, r.httpClient)
}

func (r *Runner) httpSource(slug string) (course.ArchiveSource, error) {
	opts := []course.Option{course.WithLogger(r.logger)}
	if r.httpClient != nil {
		opts = append(opts, course.WithHTTPClient(r.httpClient))
	}
	return course.NewHTTPSource(course.Config{
		BaseURL:          r.cfg.Source.BaseURL,
		ArchiveName:      r.cfg.Source.ArchiveName,
		CaptionExtension: r.cfg.Source.CaptionExtension,
		Timeout:          r.cfg.SourceTimeout(),
	}, slug, opts...)
}

func lockCourse(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire course lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseLocked, filepath.Base(dir))
	}
	return lock, nil
}
