package translate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"coursecaptions/internal/logging"
	"coursecaptions/internal/services"
	"coursecaptions/internal/subtitles"
)

// Provider translates an ordered batch of texts. Implementations must return
// one string per input, in input order.
type Provider interface {
	TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, texts []string, target string) ([]string, error)

// TranslateBatch calls f.
func (f ProviderFunc) TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error) {
	return f(ctx, texts, target)
}

// Pipeline translates the cues of a single subtitle file.
type Pipeline struct {
	provider Provider
	policy   ShardPolicy
	logger   *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithShardPolicy overrides the default two-way split.
func WithShardPolicy(policy ShardPolicy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithLogger attaches a logger for per-shard debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline constructs a pipeline around provider.
func NewPipeline(provider Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		policy:   DefaultShardPolicy(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the shard policy in effect.
func (p *Pipeline) Policy() ShardPolicy {
	return p.policy
}

// Translate returns a new cue slice with every Text replaced by its
// translation into target. Index and timing are copied unchanged and cues is
// not modified. Shards are translated concurrently; the first failure cancels
// the others and no partial result is returned.
func (p *Pipeline) Translate(ctx context.Context, cues []subtitles.Cue, target string) ([]subtitles.Cue, error) {
	if len(cues) == 0 {
		return []subtitles.Cue{}, nil
	}
	if p.provider == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "pipeline", "no provider configured", nil)
	}
	if target == "" {
		return nil, services.Wrap(services.ErrValidation, "translate", "pipeline", "target language required", nil)
	}

	spans := p.policy.Plan(len(cues))
	results := make([][]string, len(spans))
	logger := logging.WithContext(ctx, p.logger)

	group, groupCtx := errgroup.WithContext(ctx)
	for i, span := range spans {
		shard := i + 1
		group.Go(func() error {
			texts := subtitles.Texts(cues[span.Start:span.End])
			started := time.Now()
			translated, err := p.provider.TranslateBatch(groupCtx, texts, target)
			if err != nil {
				return &ProviderError{Shard: shard, Err: err}
			}
			if len(translated) != len(texts) {
				return &AlignmentError{Shard: shard, Want: len(texts), Got: len(translated)}
			}
			results[i] = translated
			logger.Debug("shard translated",
				logging.Int("shard", shard),
				logging.Int("cues", len(texts)),
				slog.Duration("elapsed", time.Since(started)),
			)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]subtitles.Cue, 0, len(cues))
	for i, span := range spans {
		for j, text := range results[i] {
			cue := cues[span.Start+j]
			cue.Text = text
			out = append(out, cue)
		}
	}
	if len(out) != len(cues) {
		return nil, errors.New("translate: merged result does not cover every cue")
	}
	return out, nil
}
