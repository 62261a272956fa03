package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"coursecaptions/internal/services"
)

func completionServer(t *testing.T, content func(r *http.Request) string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"finish_reason": "stop",
					"message":       map[string]any{"content": content(r)},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientHealthCheck(t *testing.T) {
	server := completionServer(t, func(*http.Request) string { return "```json\n{\"ok\":true}\n```" })

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestTranslateBatchSendsOrderedTexts(t *testing.T) {
	var got translationRequest
	server := completionServer(t, func(r *http.Request) string {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test" {
			t.Errorf("missing bearer token")
		}
		if r.Header.Get("HTTP-Referer") != "https://example.test" || r.Header.Get("X-Title") != "captions" {
			t.Errorf("missing attribution headers: %v", r.Header)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "demo-model" || req.ResponseFormat == nil ||
			req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Errorf("unexpected request options: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Content != TranslationPrompt {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if err := json.Unmarshal([]byte(req.Messages[1].Content), &got); err != nil {
			t.Errorf("decode user prompt: %v", err)
		}
		return `{"translations":["Hola","Mundo"]}`
	})

	client := NewClient(Config{
		APIKey:  "test",
		BaseURL: server.URL + "/chat/completions",
		Model:   "demo-model",
		Referer: "https://example.test",
		Title:   "captions",
	})
	out, err := client.TranslateBatch(context.Background(), []string{"Hello", "World"}, "es")
	if err != nil {
		t.Fatalf("TranslateBatch returned error: %v", err)
	}
	if strings.Join(out, "|") != "Hola|Mundo" {
		t.Fatalf("unexpected translations %q", out)
	}
	if got.TargetLanguage != "es" || strings.Join(got.Texts, "|") != "Hello|World" {
		t.Fatalf("unexpected request payload %+v", got)
	}
}

func TestTranslateBatchReturnsShortResultUnchanged(t *testing.T) {
	server := completionServer(t, func(*http.Request) string { return `{"translations":["Hola mundo"]}` })

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	out, err := client.TranslateBatch(context.Background(), []string{"Hello", "World"}, "es")
	if err != nil {
		t.Fatalf("TranslateBatch returned error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected model output passed through, got %q", out)
	}
}

func TestTranslateBatchEmptyInputSkipsRequest(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	out, err := client.TranslateBatch(context.Background(), nil, "es")
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty result without request, got %q %v", out, err)
	}
}

func TestTranslateBatchClassifiesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "es")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"translations":["Hola"]}`}}},
		})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(time.Second, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	out, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "es")
	if err != nil {
		t.Fatalf("TranslateBatch returned error: %v", err)
	}
	if len(out) != 1 || out[0] != "Hola" {
		t.Fatalf("unexpected output %q", out)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestTranslateBatchServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithRetryMaxAttempts(1))
	_, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "es")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("expected API message in error, got %v", err)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls int
	server := completionServer(t, func(*http.Request) string {
		calls++
		if calls < 3 {
			return ""
		}
		return `{"translations":["Hola"]}`
	})

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "es"); err != nil {
		t.Fatalf("TranslateBatch returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestClientEmptyContentErrorHasFinishReason(t *testing.T) {
	server := completionServer(t, func(*http.Request) string { return "" })

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryMaxAttempts(1),
	)
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected empty content failure")
	}
	if !strings.Contains(err.Error(), "empty content") || !strings.Contains(err.Error(), `finish_reason="stop"`) {
		t.Fatalf("expected finish reason in error, got %v", err)
	}
}

func TestDecodeObjectToleratesWrapping(t *testing.T) {
	for _, content := range []string{
		`{"translations":["Hola"]}`,
		"```json\n{\"translations\":[\"Hola\"]}\n```",
		`Sure! {"translations":["Hola"]} Enjoy.`,
	} {
		var parsed translationResponse
		if err := decodeObject(content, &parsed); err != nil {
			t.Fatalf("decodeObject(%q) returned error: %v", content, err)
		}
		if len(parsed.Translations) != 1 || parsed.Translations[0] != "Hola" {
			t.Fatalf("unexpected decode %+v", parsed)
		}
	}
	var parsed translationResponse
	if err := decodeObject("   ", &parsed); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if err := decodeObject(`{"translations": [}`, &parsed); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestAPIRootAcceptsCompletionsURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", DefaultBaseURL},
		{"https://openrouter.ai/api/v1/", DefaultBaseURL},
		{"https://openrouter.ai/api/v1/chat/completions", DefaultBaseURL},
		{"http://localhost:8080/v1", "http://localhost:8080/v1"},
	}
	for _, tc := range cases {
		if got := apiRoot(tc.in); got != tc.want {
			t.Errorf("apiRoot(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
