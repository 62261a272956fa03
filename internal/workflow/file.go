package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coursecaptions/internal/fileutil"
	"coursecaptions/internal/services"
	"coursecaptions/internal/subtitles"
	"coursecaptions/internal/translate"
)

// FileResult reports a single-file translation.
type FileResult struct {
	Input          string
	Output         string
	TargetLanguage string
	Cues           int
}

// TranslateFile translates a local SRT or WebVTT file. An empty output writes
// next to the input as <name>.<target>.srt.
func (r *Runner) TranslateFile(ctx context.Context, input, output, target string) (*FileResult, error) {
	resolvedTarget, err := r.resolveTarget(target)
	if err != nil {
		return nil, err
	}
	input = filepath.Clean(input)
	if strings.TrimSpace(output) == "" {
		output = fileutil.ReplaceExt(input, "."+resolvedTarget+".srt")
	}
	output = filepath.Clean(output)
	if output == input {
		return nil, services.Wrap(services.ErrValidation, "workflow", "translate file", "output would overwrite input", nil)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "read caption", input, err)
	}
	cues, err := parseCaption(data, input)
	if err != nil {
		return nil, err
	}
	provider, err := r.resolveProvider()
	if err != nil {
		return nil, err
	}

	ctx = services.WithLecture(ctx, filepath.Base(input))
	pipeline := translate.NewPipeline(provider,
		translate.WithShardPolicy(ShardPolicy(r.cfg)),
		translate.WithLogger(r.logger),
	)
	translated, err := pipeline.Translate(ctx, cues, resolvedTarget)
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(output, subtitles.FormatSRT(translated), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", output, err)
	}
	return &FileResult{
		Input:          input,
		Output:         output,
		TargetLanguage: resolvedTarget,
		Cues:           len(translated),
	}, nil
}
