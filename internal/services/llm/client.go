package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"coursecaptions/internal/services/httpretry"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	// DefaultBaseURL is the OpenRouter API root; the client appends
	// /chat/completions.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible chat completion API, OpenRouter by default.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      httpretry.Policy
	api        *openai.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Attribution headers are
// added on top of its transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.MaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.BaseDelay = baseDelay
		c.retry.MaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.Sleeper = sleeper
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        apiRoot(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		retry:      httpretry.Default(),
	}
	client.retry.RetryIf = isEmptyContent
	for _, opt := range opts {
		opt(client)
	}

	apiConfig := openai.DefaultConfig(client.cfg.APIKey)
	apiConfig.BaseURL = client.cfg.BaseURL
	httpClient := *client.httpClient
	httpClient.Transport = &attributionTransport{
		base:    httpClient.Transport,
		referer: client.cfg.Referer,
		title:   client.cfg.Title,
	}
	apiConfig.HTTPClient = &httpClient
	client.api = openai.NewClientWithConfig(apiConfig)
	return client
}

// apiRoot accepts either the API root or a full chat completions URL.
func apiRoot(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}

// attributionTransport sets the OpenRouter app attribution headers.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer != "" || t.title != "" {
		req = req.Clone(req.Context())
		if t.referer != "" {
			req.Header.Set("HTTP-Referer", t.referer)
			req.Header.Set("Referer", t.referer)
		}
		if t.title != "" {
			req.Header.Set("X-Title", t.title)
		}
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

type emptyContentError struct {
	Op           string
	Model        string
	FinishReason string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (model=%q, finish_reason=%q)", e.Op, e.Model, e.FinishReason)
}

func isEmptyContent(err error) bool {
	var target *emptyContentError
	return errors.As(err, &target)
}

// CompleteJSON issues a JSON-only chat completion request with the supplied prompts.
// It returns the raw JSON payload produced by the model.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New("llm complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}
	return c.complete(ctx, systemPrompt, userPrompt, "llm complete")
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	content, err := c.complete(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`, "llm health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := decodeObject(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt, op string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var content string
	err := c.retry.Do(ctx, op, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return statusError(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%s: empty choices", op)
		}
		text, finishReason := messageContent(resp.Choices)
		if text == "" {
			return &emptyContentError{Op: op, Model: resp.Model, FinishReason: finishReason}
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// messageContent returns the first non-empty content, falling back to tool
// call arguments for providers that answer JSON mode through a tool call.
func messageContent(choices []openai.ChatCompletionChoice) (string, string) {
	var finishReason string
	for _, choice := range choices {
		if finishReason == "" {
			finishReason = string(choice.FinishReason)
		}
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, finishReason
		}
		for _, call := range choice.Message.ToolCalls {
			if args := strings.TrimSpace(call.Function.Arguments); args != "" {
				return args, finishReason
			}
		}
	}
	return "", finishReason
}

// statusError converts go-openai HTTP failures into httpretry.StatusError so
// the shared retry policy and failure markers apply.
func statusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &httpretry.StatusError{Service: "llm", StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &httpretry.StatusError{Service: "llm", StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("llm request: %w", err)
}
