package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Provider credentials are not
// required here so that config commands work before keys are in place; the
// preflight checks report missing credentials instead.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil {
		return fmt.Errorf("notifications.ntfy_topic: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateSource() error {
	parsed, err := url.Parse(c.Source.BaseURL)
	if err != nil {
		return fmt.Errorf("source.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("source.base_url must be an http(s) URL, got %q", c.Source.BaseURL)
	}
	if strings.ContainsAny(c.Source.ArchiveName, `/\`) {
		return errors.New("source.archive_name must be a plain file name")
	}
	if c.Source.TimeoutSeconds < 0 {
		return errors.New("source.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Provider {
	case ProviderGoogle, ProviderLLM:
	default:
		return fmt.Errorf("translation.provider must be %q or %q, got %q", ProviderGoogle, ProviderLLM, c.Translation.Provider)
	}
	if c.Translation.Shards < 1 || c.Translation.Shards > maxShards {
		return fmt.Errorf("translation.shards must be between 1 and %d", maxShards)
	}
	if c.Translation.MaxShardSize < 0 {
		return errors.New("translation.max_shard_size must not be negative (0 disables the cap)")
	}
	return ValidateConcurrency("translation.concurrency", c.Translation.Concurrency)
}

// ValidateConcurrency checks a lecture concurrency value, from the config file
// or a command-line override, against the supported range.
func ValidateConcurrency(name string, value int) error {
	if value < 1 || value > maxConcurrency {
		return fmt.Errorf("%s must be between 1 and %d, got %d", name, maxConcurrency, value)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// ProviderCredentialsError reports missing credentials for the selected provider.
// It returns nil when the provider is usable.
func (c *Config) ProviderCredentialsError() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	switch c.Translation.Provider {
	case ProviderGoogle:
		if c.Google.APIKey == "" && !c.Google.UsesDefaultCredentials() {
			return fmt.Errorf("google.api_key is required. Set GOOGLE_TRANSLATE_API_KEY or GOOGLE_APPLICATION_CREDENTIALS env var or edit %s (create with 'coursecaptions config init')", defaultPath)
		}
	case ProviderLLM:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'coursecaptions config init')", defaultPath)
		}
	}
	return nil
}
