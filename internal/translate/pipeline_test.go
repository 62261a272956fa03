package translate_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"coursecaptions/internal/services"
	"coursecaptions/internal/subtitles"
	"coursecaptions/internal/translate"
)

// recordingProvider uppercases texts and records every batch it receives.
type recordingProvider struct {
	mu      sync.Mutex
	batches [][]string
	targets []string
	fn      func(texts []string) ([]string, error)
}

func (p *recordingProvider) TranslateBatch(_ context.Context, texts []string, target string) ([]string, error) {
	p.mu.Lock()
	p.batches = append(p.batches, slices.Clone(texts))
	p.targets = append(p.targets, target)
	p.mu.Unlock()
	if p.fn != nil {
		return p.fn(texts)
	}
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = strings.ToUpper(text)
	}
	return out, nil
}

func (p *recordingProvider) sizes() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	sizes := make([]int, len(p.batches))
	for i, batch := range p.batches {
		sizes[i] = len(batch)
	}
	slices.Sort(sizes)
	slices.Reverse(sizes)
	return sizes
}

func makeCues(n int) []subtitles.Cue {
	cues := make([]subtitles.Cue, n)
	for i := range cues {
		cues[i] = subtitles.Cue{
			Index: i + 1,
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i)*time.Second + 900*time.Millisecond,
			Text:  fmt.Sprintf("line %d", i+1),
		}
	}
	return cues
}

func TestTranslateHelloWorld(t *testing.T) {
	dictionary := map[string]string{"Hello": "Hola", "World": "Mundo"}
	provider := &recordingProvider{fn: func(texts []string) ([]string, error) {
		out := make([]string, len(texts))
		for i, text := range texts {
			out[i] = dictionary[text]
		}
		return out, nil
	}}
	cues := []subtitles.Cue{
		{Index: 1, Start: 0, End: time.Second, Text: "Hello"},
		{Index: 2, Start: time.Second, End: 2 * time.Second, Text: "World"},
	}

	out, err := translate.NewPipeline(provider).Translate(context.Background(), cues, "es")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	want := []subtitles.Cue{
		{Index: 1, Start: 0, End: time.Second, Text: "Hola"},
		{Index: 2, Start: time.Second, End: 2 * time.Second, Text: "Mundo"},
	}
	if !slices.Equal(out, want) {
		t.Fatalf("Translate = %+v, want %+v", out, want)
	}
	if got := provider.sizes(); !slices.Equal(got, []int{1, 1}) {
		t.Fatalf("expected two single-cue requests, got %v", got)
	}
	for _, target := range provider.targets {
		if target != "es" {
			t.Fatalf("expected target es, got %q", target)
		}
	}
}

func TestTranslatePreservesOrderAndTiming(t *testing.T) {
	cues := makeCues(9)
	original := slices.Clone(cues)
	provider := &recordingProvider{}

	out, err := translate.NewPipeline(provider).Translate(context.Background(), cues, "fr")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if len(out) != len(cues) {
		t.Fatalf("expected %d cues, got %d", len(cues), len(out))
	}
	for i := range out {
		if out[i].Index != cues[i].Index || out[i].Start != cues[i].Start || out[i].End != cues[i].End {
			t.Errorf("cue %d metadata changed: %+v vs %+v", i, out[i], cues[i])
		}
		if out[i].Text != strings.ToUpper(cues[i].Text) {
			t.Errorf("cue %d text = %q, want %q", i, out[i].Text, strings.ToUpper(cues[i].Text))
		}
	}
	if !slices.Equal(cues, original) {
		t.Fatal("input cues were modified")
	}
}

func TestTranslateSplitsOddCountLargerFirst(t *testing.T) {
	provider := &recordingProvider{}
	if _, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(5), "es"); err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got := provider.sizes(); !slices.Equal(got, []int{3, 2}) {
		t.Fatalf("expected shards of 3 and 2, got %v", got)
	}
	for _, batch := range provider.batches {
		if len(batch) == 3 && !slices.Equal(batch, []string{"line 1", "line 2", "line 3"}) {
			t.Fatalf("first shard should hold the first three cues, got %v", batch)
		}
	}
}

func TestTranslateEmptyInputMakesNoCalls(t *testing.T) {
	provider := &recordingProvider{}
	out, err := translate.NewPipeline(provider).Translate(context.Background(), nil, "es")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", out)
	}
	if len(provider.batches) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(provider.batches))
	}
}

func TestTranslateSingleCueUsesOneRequest(t *testing.T) {
	provider := &recordingProvider{}
	out, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(1), "es")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if len(out) != 1 || out[0].Text != "LINE 1" {
		t.Fatalf("unexpected output %+v", out)
	}
	if got := provider.sizes(); !slices.Equal(got, []int{1}) {
		t.Fatalf("expected one request, got %v", got)
	}
}

func TestTranslateAlignmentMismatch(t *testing.T) {
	provider := &recordingProvider{fn: func(texts []string) ([]string, error) {
		return texts[:len(texts)-1], nil
	}}
	out, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(4), "es")
	if out != nil {
		t.Fatalf("expected nil output, got %+v", out)
	}
	var alignErr *translate.AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected AlignmentError, got %v", err)
	}
	if alignErr.Want != 2 || alignErr.Got != 1 {
		t.Fatalf("unexpected alignment detail %+v", alignErr)
	}
	var providerErr *translate.ProviderError
	if errors.As(err, &providerErr) {
		t.Fatal("alignment failure must not be reported as a provider error")
	}
	if kind := services.FailureKind(err); kind != services.KindValidation {
		t.Fatalf("expected validation kind, got %q", kind)
	}
}

func TestTranslateProviderFailure(t *testing.T) {
	quota := errors.New("quota exceeded")
	var calls int
	var mu sync.Mutex
	provider := translate.ProviderFunc(func(ctx context.Context, texts []string, _ string) ([]string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if texts[0] == "line 1" {
			return nil, quota
		}
		return texts, nil
	})

	out, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(6), "es")
	if out != nil {
		t.Fatalf("expected nil output on failure, got %+v", out)
	}
	var providerErr *translate.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.Shard != 1 {
		t.Fatalf("expected failing shard 1, got %d", providerErr.Shard)
	}
	if !errors.Is(err, quota) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if kind := services.FailureKind(err); kind != services.KindExternal {
		t.Fatalf("expected external kind, got %q", kind)
	}
	if calls != 2 {
		t.Fatalf("expected both shards dispatched, got %d calls", calls)
	}
}

func TestTranslateProviderFailureKeepsCauseKind(t *testing.T) {
	provider := translate.ProviderFunc(func(context.Context, []string, string) ([]string, error) {
		return nil, services.Wrap(services.ErrConfiguration, "google translate", "translate", "", errors.New("http 403"))
	})
	_, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(2), "es")
	if kind := services.FailureKind(err); kind != services.KindConfiguration {
		t.Fatalf("expected configuration kind, got %q (%v)", kind, err)
	}
}

func TestTranslateShardsRunConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	provider := translate.ProviderFunc(func(ctx context.Context, texts []string, _ string) ([]string, error) {
		wg.Done()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return texts, nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("shards did not overlap")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	if _, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(4), "es"); err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
}

func TestTranslateCancelsSiblingShardOnFailure(t *testing.T) {
	provider := translate.ProviderFunc(func(ctx context.Context, texts []string, _ string) ([]string, error) {
		if texts[0] == "line 1" {
			return nil, errors.New("auth failed")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return nil, errors.New("sibling shard was not cancelled")
		}
	})
	_, err := translate.NewPipeline(provider).Translate(context.Background(), makeCues(4), "es")
	if err == nil || !strings.Contains(err.Error(), "auth failed") {
		t.Fatalf("expected first failure to win, got %v", err)
	}
}

func TestTranslateWithMaxShardSize(t *testing.T) {
	provider := &recordingProvider{}
	pipeline := translate.NewPipeline(provider, translate.WithShardPolicy(translate.ShardPolicy{Shards: 2, MaxShardSize: 4}))
	out, err := pipeline.Translate(context.Background(), makeCues(10), "es")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("expected 10 cues, got %d", len(out))
	}
	if got := provider.sizes(); !slices.Equal(got, []int{4, 3, 3}) {
		t.Fatalf("expected shards 4/3/3, got %v", got)
	}
	for i, cue := range out {
		if cue.Text != fmt.Sprintf("LINE %d", i+1) {
			t.Fatalf("cue %d out of order: %q", i, cue.Text)
		}
	}
}

func TestTranslateRequiresProviderAndTarget(t *testing.T) {
	if _, err := translate.NewPipeline(nil).Translate(context.Background(), makeCues(1), "es"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := translate.NewPipeline(&recordingProvider{}).Translate(context.Background(), makeCues(1), ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
