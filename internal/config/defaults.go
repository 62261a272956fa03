package config

const (
	defaultConfigPath           = "~/.config/coursecaptions/config.toml"
	defaultWorkDir              = "~/.local/share/coursecaptions/translations"
	defaultLogDir               = "~/.local/share/coursecaptions/logs"
	defaultSourceBaseURL        = "https://static.frontendmasters.com/assets/courses"
	defaultArchiveName          = "transcripts.zip"
	defaultCaptionExtension     = ".vtt"
	defaultSourceTimeoutSeconds = 60
	defaultProvider             = ProviderGoogle
	defaultTargetLanguage       = "es"
	defaultGoogleModel          = "nmt"
	defaultShards               = 2
	defaultConcurrency          = 4
	defaultGoogleBaseURL        = "https://translation.googleapis.com/language/translate/"
	defaultGoogleTimeoutSeconds = 30
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1"
	defaultLLMModel             = "google/gemini-3-flash-preview"
	defaultLLMReferer           = "https://github.com/coursecaptions/coursecaptions"
	defaultLLMTitle             = "coursecaptions"
	defaultLLMTimeoutSeconds    = 60
	defaultNtfyTimeoutSeconds   = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	maxShards                   = 64
	maxConcurrency              = 64
)

// Supported translation providers.
const (
	ProviderGoogle = "google"
	ProviderLLM    = "llm"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Source: Source{
			BaseURL:          defaultSourceBaseURL,
			ArchiveName:      defaultArchiveName,
			CaptionExtension: defaultCaptionExtension,
			TimeoutSeconds:   defaultSourceTimeoutSeconds,
		},
		Translation: Translation{
			Provider:        defaultProvider,
			TargetLanguage:  defaultTargetLanguage,
			Model:           defaultGoogleModel,
			Shards:          defaultShards,
			Concurrency:     defaultConcurrency,
			ContinueOnError: true,
		},
		Google: Google{
			BaseURL:        defaultGoogleBaseURL,
			TimeoutSeconds: defaultGoogleTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
