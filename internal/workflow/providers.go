package workflow

import (
	"context"
	"fmt"
	"net/http"

	"coursecaptions/internal/config"
	"coursecaptions/internal/services"
	"coursecaptions/internal/services/googletranslate"
	"coursecaptions/internal/services/llm"
	"coursecaptions/internal/translate"
)

// NewProvider builds the translation provider selected by
// translation.provider. httpClient applies to the LLM client only; the Google
// client builds its own authenticated transport. A nil httpClient keeps the
// default.
func NewProvider(cfg *config.Config, httpClient *http.Client) (translate.Provider, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "provider", "config is nil", nil)
	}
	if err := cfg.ProviderCredentialsError(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "provider", "", err)
	}

	switch cfg.Translation.Provider {
	case config.ProviderGoogle:
		return googletranslate.NewClient(googletranslate.Config{
			APIKey:         cfg.Google.APIKey,
			BaseURL:        cfg.Google.BaseURL,
			Model:          cfg.Translation.Model,
			SourceLanguage: cfg.Translation.SourceLanguage,
			TimeoutSeconds: cfg.Google.TimeoutSeconds,
		}), nil
	case config.ProviderLLM:
		var opts []llm.Option
		if httpClient != nil {
			opts = append(opts, llm.WithHTTPClient(httpClient))
		}
		client := llm.NewClient(llm.Config(cfg.GetLLM()), opts...)
		source := cfg.Translation.SourceLanguage
		return translate.ProviderFunc(func(ctx context.Context, texts []string, target string) ([]string, error) {
			return client.TranslateBatchFrom(ctx, texts, source, target)
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "provider",
			fmt.Sprintf("unknown provider %q", cfg.Translation.Provider), nil)
	}
}

// ShardPolicy returns the pipeline shard policy for cfg. The Google provider
// is capped at the per-request batch limit of the v2 API.
func ShardPolicy(cfg *config.Config) translate.ShardPolicy {
	policy := translate.ShardPolicy{
		Shards:       cfg.Translation.Shards,
		MaxShardSize: cfg.Translation.MaxShardSize,
	}
	if policy.Shards < 1 {
		policy.Shards = translate.DefaultShards
	}
	if cfg.Translation.Provider == config.ProviderGoogle {
		if policy.MaxShardSize == 0 || policy.MaxShardSize > googletranslate.MaxBatchSize {
			policy.MaxShardSize = googletranslate.MaxBatchSize
		}
	}
	return policy
}
