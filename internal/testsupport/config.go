package testsupport

import (
	"path/filepath"
	"testing"

	"coursecaptions/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "translations")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Google.APIKey = "test"
	cfgVal.LLM.APIKey = "test"
	cfgVal.Source.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourceURL points caption downloads at a test server.
func WithSourceURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.BaseURL = url
	}
}

// WithGoogleURL points the Google provider at a test server.
func WithGoogleURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Provider = config.ProviderGoogle
		b.cfg.Google.BaseURL = url
	}
}

// WithLLMURL switches the provider to the chat completion client at url.
func WithLLMURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Provider = config.ProviderLLM
		b.cfg.LLM.BaseURL = url
	}
}

// WithTargetLanguage overrides the target language.
func WithTargetLanguage(lang string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.TargetLanguage = lang
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
