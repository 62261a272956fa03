// Package llm provides an OpenRouter-compatible chat client, built on
// github.com/sashabaranov/go-openai, used as an alternative caption
// translation provider.
//
// # Translation
//
// Client.TranslateBatch sends one shard of cue texts as a JSON array and asks
// the model to answer with {"translations": [...]} in the same order. The
// returned slice is passed through untouched; the translate pipeline owns the
// length check so a model that merges or drops lines surfaces as an alignment
// failure rather than silently shifted captions.
//
// # Configuration
//
// Requires api_key and model. base_url is the API root (the client appends
// /chat/completions); referer and title become OpenRouter attribution headers.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, network timeouts and empty model
// content with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON content.
// Client.TranslateBatch: translate an ordered batch of texts.
// Client.HealthCheck: verify API key and model availability.
package llm
