package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"coursecaptions/internal/course"
	"coursecaptions/internal/fileutil"
	"coursecaptions/internal/ledger"
	"coursecaptions/internal/logging"
	"coursecaptions/internal/services"
	"coursecaptions/internal/subtitles"
	"coursecaptions/internal/translate"
)

type lectureJob struct {
	course   string
	member   string
	target   string
	force    bool
	source   course.ArchiveSource
	pipeline *translate.Pipeline
}

type lectureOutcome struct {
	member string
	status ledger.LectureStatus
	cues   int
	output string
	err    error
}

// processLecture translates one archive member and records the outcome. A
// failed lecture leaves any previous output file untouched.
func (r *Runner) processLecture(ctx context.Context, job lectureJob) lectureOutcome {
	ctx = services.WithLecture(ctx, job.member)
	logger := logging.WithContext(ctx, r.logger)
	outputPath := r.outputPath(job.course, job.member, job.target)

	if !job.force {
		if done, cues := r.alreadyTranslated(ctx, job, outputPath); done {
			outcome := lectureOutcome{member: job.member, status: ledger.LectureSkipped, cues: cues, output: outputPath}
			r.recordLecture(ctx, logger, job, outcome)
			logger.Debug("lecture already translated", logging.String("output", outputPath))
			return outcome
		}
	}

	cues, err := r.translateLecture(ctx, job, outputPath)
	outcome := lectureOutcome{member: job.member, cues: cues, output: outputPath, err: err}
	if err != nil {
		outcome.status = ledger.LectureFailed
		outcome.output = ""
		logger.Error("lecture translation failed",
			logging.String("error_kind", services.FailureKind(err)),
			logging.Error(err),
		)
	} else {
		outcome.status = ledger.LectureTranslated
		logger.Info("lecture translated",
			logging.Int("cues", cues),
			logging.String("output", outputPath),
		)
	}
	r.recordLecture(ctx, logger, job, outcome)
	return outcome
}

func (r *Runner) translateLecture(ctx context.Context, job lectureJob, outputPath string) (int, error) {
	name := course.CaptionName(job.member, r.cfg.Source.CaptionExtension)
	raw, err := job.source.FetchCaption(ctx, name)
	if err != nil {
		return 0, err
	}
	cues, err := parseCaption(raw, name)
	if err != nil {
		return 0, err
	}
	translated, err := job.pipeline.Translate(ctx, cues, job.target)
	if err != nil {
		return 0, err
	}
	if err := fileutil.WriteFileAtomic(outputPath, subtitles.FormatSRT(translated), 0o644); err != nil {
		return 0, services.Wrap(services.ErrTransient, "workflow", "write srt", outputPath, err)
	}
	return len(translated), nil
}

// alreadyTranslated reports whether the ledger holds a finished translation
// for this lecture and language whose output file still exists.
func (r *Runner) alreadyTranslated(ctx context.Context, job lectureJob, outputPath string) (bool, int) {
	previous, err := r.store.GetLecture(ctx, job.course, job.member, job.target)
	if err != nil || previous == nil {
		return false, 0
	}
	if previous.Status != ledger.LectureTranslated && previous.Status != ledger.LectureSkipped {
		return false, 0
	}
	if previous.OutputPath != outputPath || !fileutil.Exists(outputPath) {
		return false, 0
	}
	return true, previous.CueCount
}

func (r *Runner) recordLecture(ctx context.Context, logger *slog.Logger, job lectureJob, outcome lectureOutcome) {
	record := ledger.Lecture{
		Course:         job.course,
		Member:         job.member,
		TargetLanguage: job.target,
		Status:         outcome.status,
		CueCount:       outcome.cues,
		OutputPath:     outcome.output,
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		record.RunID = runID
	}
	if outcome.err != nil {
		record.ErrorMessage = outcome.err.Error()
		record.ErrorKind = services.FailureKind(outcome.err)
	}
	if err := r.store.RecordLecture(context.WithoutCancel(ctx), record); err != nil {
		logger.Error("failed to record lecture outcome", logging.Error(err))
	}
}

func (r *Runner) outputPath(slug, member, target string) string {
	return filepath.Join(r.cfg.CaptionDir(slug), filepath.FromSlash(course.OutputName(member, target)))
}

// parseCaption decodes SRT or WebVTT content into cues. WebVTT is detected
// from the file name or its header.
func parseCaption(data []byte, name string) ([]subtitles.Cue, error) {
	if isWebVTT(data, name) {
		converted, err := subtitles.ConvertVTTToSRT(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}
	return subtitles.ParseSRT(data)
}

func isWebVTT(data []byte, name string) bool {
	if strings.EqualFold(filepath.Ext(name), ".vtt") {
		return true
	}
	head := strings.TrimPrefix(string(data[:min(len(data), 16)]), "\ufeff")
	return strings.HasPrefix(head, "WEBVTT")
}
