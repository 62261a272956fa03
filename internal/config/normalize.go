package config

import (
	"fmt"
	"os"
	"strings"

	"coursecaptions/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	if err := c.normalizeTranslation(); err != nil {
		return err
	}
	c.normalizeGoogle()
	c.normalizeLLM()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaultSourceBaseURL
	}
	c.Source.ArchiveName = strings.TrimSpace(c.Source.ArchiveName)
	if c.Source.ArchiveName == "" {
		c.Source.ArchiveName = defaultArchiveName
	}
	ext := strings.ToLower(strings.TrimSpace(c.Source.CaptionExtension))
	if ext == "" {
		ext = defaultCaptionExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Source.CaptionExtension = ext
}

func (c *Config) normalizeTranslation() error {
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	if c.Translation.Provider == "" {
		c.Translation.Provider = defaultProvider
	}
	if value, ok := os.LookupEnv("COURSECAPTIONS_TARGET_LANGUAGE"); ok && strings.TrimSpace(value) != "" {
		c.Translation.TargetLanguage = value
	}
	target, err := language.Canonical(c.Translation.TargetLanguage)
	if err != nil {
		return fmt.Errorf("translation.target_language: %w", err)
	}
	c.Translation.TargetLanguage = target
	if source := strings.TrimSpace(c.Translation.SourceLanguage); source != "" {
		canonical, err := language.Canonical(source)
		if err != nil {
			return fmt.Errorf("translation.source_language: %w", err)
		}
		c.Translation.SourceLanguage = canonical
	} else {
		c.Translation.SourceLanguage = ""
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	if c.Translation.Shards == 0 {
		c.Translation.Shards = defaultShards
	}
	if c.Translation.Concurrency == 0 {
		c.Translation.Concurrency = defaultConcurrency
	}
	return nil
}

func (c *Config) normalizeGoogle() {
	c.Google.APIKey = strings.TrimSpace(c.Google.APIKey)
	if c.Google.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_TRANSLATE_API_KEY"); ok {
			c.Google.APIKey = strings.TrimSpace(value)
		}
	}
	c.Google.BaseURL = strings.TrimSpace(c.Google.BaseURL)
	if c.Google.BaseURL == "" {
		c.Google.BaseURL = defaultGoogleBaseURL
	}
	if c.Google.TimeoutSeconds <= 0 {
		c.Google.TimeoutSeconds = defaultGoogleTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
