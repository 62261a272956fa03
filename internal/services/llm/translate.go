package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coursecaptions/internal/services/httpretry"
)

// TranslationPrompt instructs the model to keep batch shape intact.
const TranslationPrompt = `You translate video lecture captions.
You receive a JSON object with "target_language", an optional "source_language" and "texts", an ordered array of caption texts.
Translate every element of "texts" into the target language.
Respond with JSON only, shaped as {"translations": ["..."]}.
The "translations" array must have exactly one entry per input text, in the same order.
Never merge, split, drop or reorder entries. Preserve line breaks inside an entry.
Keep code identifiers, product names and URLs unchanged.`

type translationRequest struct {
	TargetLanguage string   `json:"target_language"`
	SourceLanguage string   `json:"source_language,omitempty"`
	Texts          []string `json:"texts"`
}

type translationResponse struct {
	Translations []string `json:"translations"`
}

// TranslateBatch translates texts into target, preserving order. The result is
// returned as the model produced it; callers verify the length.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error) {
	return c.TranslateBatchFrom(ctx, texts, "", target)
}

// TranslateBatchFrom is TranslateBatch with an explicit source language hint.
func (c *Client) TranslateBatchFrom(ctx context.Context, texts []string, source, target string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if target == "" {
		return nil, errors.New("llm translate: target language required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("llm translate: api key required")
	}
	encoded, err := json.Marshal(translationRequest{
		TargetLanguage: target,
		SourceLanguage: source,
		Texts:          texts,
	})
	if err != nil {
		return nil, fmt.Errorf("llm translate: encode batch: %w", err)
	}
	content, err := c.complete(ctx, TranslationPrompt, string(encoded), "llm translate")
	if err != nil {
		return nil, httpretry.Wrap("llm", "translate", err)
	}
	var parsed translationResponse
	if err := decodeObject(content, &parsed); err != nil {
		return nil, fmt.Errorf("llm translate: parse payload: %w", err)
	}
	if parsed.Translations == nil {
		return nil, errors.New("llm translate: response missing translations")
	}
	return parsed.Translations, nil
}

// decodeObject unmarshals the JSON object in content. Models sometimes wrap
// the object in a code fence or a sentence even in JSON mode, so anything
// outside the outermost braces is ignored.
func decodeObject(content string, target any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in %q", preview(content))
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), target); err != nil {
		return fmt.Errorf("%w in %q", err, preview(content))
	}
	return nil
}

func preview(content string) string {
	const limit = 120
	content = strings.Join(strings.Fields(content), " ")
	if runes := []rune(content); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return content
}
