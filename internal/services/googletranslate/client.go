// Package googletranslate adapts the Cloud Translation v2 client
// (cloud.google.com/go/translate) to the pipeline's batch provider contract.
//
// Client.TranslateBatch sends one request per batch and returns the
// translations in request order. The client authenticates with the configured
// API key, or with Application Default Credentials when no key is set.
// Throttling and server errors are retried, then every failure is tagged with
// a services marker derived from the googleapi status code.
package googletranslate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gtranslate "cloud.google.com/go/translate"
	xlanguage "golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"coursecaptions/internal/language"
	"coursecaptions/internal/services"
	"coursecaptions/internal/services/httpretry"
)

const (
	// DefaultBaseURL is the v2 service root; the client appends "v2".
	DefaultBaseURL     = "https://translation.googleapis.com/language/translate/"
	defaultHTTPTimeout = 30 * time.Second
	// MaxBatchSize is the documented limit of q values per request.
	MaxBatchSize = 128
	stage        = "google translate"
)

// Config captures the runtime settings for the client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	SourceLanguage string
	TimeoutSeconds int
}

// Client translates batches through the Cloud Translation v2 API.
type Client struct {
	cfg        Config
	timeout    time.Duration
	retry      httpretry.Policy
	clientOpts []option.ClientOption

	once    sync.Once
	api     *gtranslate.Client
	initErr error
}

// Option customizes the client.
type Option func(*Client)

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(policy httpretry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithClientOptions appends options passed to the underlying Cloud client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *Client) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// NewClient constructs a client. The Cloud client is created on first use so
// construction never blocks on credential discovery.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			SourceLanguage: strings.TrimSpace(cfg.SourceLanguage),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		timeout: timeout,
		retry:   httpretry.Default(),
	}
	client.retry.RetryIf = isRetriable
	for _, opt := range opts {
		opt(client)
	}
	if client.retry.RetryIf == nil {
		client.retry.RetryIf = isRetriable
	}
	return client
}

// TranslateBatch translates texts into target. The result has one entry per
// translation the API returned, in order; the caller checks the count.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if len(texts) > MaxBatchSize {
		return nil, services.Wrap(services.ErrValidation, stage, "translate",
			fmt.Sprintf("batch of %d exceeds limit of %d", len(texts), MaxBatchSize), nil)
	}
	targetTag, err := language.Tag(target)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stage, "translate", "target language", err)
	}
	opts := &gtranslate.Options{Format: gtranslate.Text, Model: c.cfg.Model}
	if c.cfg.SourceLanguage != "" {
		if opts.Source, err = language.Tag(c.cfg.SourceLanguage); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, stage, "translate", "source language", err)
		}
	}

	api, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	var translations []gtranslate.Translation
	err = c.retry.Do(ctx, stage, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		var err error
		translations, err = api.Translate(callCtx, texts, targetTag, opts)
		return err
	})
	if err != nil {
		return nil, services.Wrap(marker(err), stage, "translate", "", err)
	}

	out := make([]string, len(translations))
	for i, translation := range translations {
		out[i] = translation.Text
	}
	return out, nil
}

// HealthCheck translates a single word to verify credentials and endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	out, err := c.TranslateBatch(ctx, []string{"hello"}, xlanguage.Spanish.String())
	if err != nil {
		return err
	}
	if len(out) != 1 {
		return fmt.Errorf("google translate health: expected 1 translation, got %d", len(out))
	}
	return nil
}

// Close releases the underlying Cloud client.
func (c *Client) Close() error {
	if c.api == nil {
		return nil
	}
	return c.api.Close()
}

func (c *Client) client(ctx context.Context) (*gtranslate.Client, error) {
	c.once.Do(func() {
		opts := []option.ClientOption{option.WithUserAgent("coursecaptions")}
		if c.cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(c.cfg.APIKey))
		}
		if c.cfg.BaseURL != "" && c.cfg.BaseURL != DefaultBaseURL {
			opts = append(opts, option.WithEndpoint(endpoint(c.cfg.BaseURL)))
		}
		opts = append(opts, c.clientOpts...)
		c.api, c.initErr = gtranslate.NewClient(context.WithoutCancel(ctx), opts...)
		if c.initErr != nil {
			c.initErr = services.Wrap(services.ErrConfiguration, stage, "client", "create client", c.initErr)
		}
	})
	return c.api, c.initErr
}

// endpoint accepts either the service root or a full ".../v2" URL and returns
// the root with a trailing slash.
func endpoint(base string) string {
	base = strings.TrimSuffix(strings.TrimRight(base, "/"), "/v2")
	return base + "/"
}

func apiError(err error) (*googleapi.Error, bool) {
	var apiErr *googleapi.Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func isRetriable(err error) bool {
	apiErr, ok := apiError(err)
	if !ok {
		return false
	}
	return apiErr.Code == http.StatusRequestTimeout ||
		apiErr.Code == http.StatusTooManyRequests ||
		apiErr.Code >= http.StatusInternalServerError
}

func marker(err error) error {
	apiErr, ok := apiError(err)
	if !ok {
		return httpretry.Marker(err)
	}
	switch {
	case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
		return services.ErrConfiguration
	case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
		return services.ErrConfiguration
	case apiErr.Code == http.StatusNotFound:
		return services.ErrNotFound
	case apiErr.Code == http.StatusBadRequest:
		return services.ErrValidation
	case isRetriable(apiErr):
		return services.ErrTransient
	default:
		return services.ErrExternalTool
	}
}
