package httpretry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"coursecaptions/internal/services"
)

func TestDoRetriesRetriableStatus(t *testing.T) {
	var sleeps []time.Duration
	policy := Policy{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Sleeper:     func(d time.Duration) { sleeps = append(sleeps, d) },
	}

	calls := 0
	err := policy.Do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(sleeps) != len(want) || sleeps[0] != want[0] || sleeps[1] != want[1] {
		t.Fatalf("unexpected backoff %v, want %v", sleeps, want)
	}
}

func TestDoStopsOnClientError(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, Sleeper: func(time.Duration) {}}
	calls := 0
	err := policy.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return &StatusError{StatusCode: http.StatusForbidden, Body: "bad key"}
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 status error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleeper: func(time.Duration) {}}
	calls := 0
	err := policy.Do(context.Background(), "google translate", func(context.Context) error {
		calls++
		return &StatusError{StatusCode: http.StatusTooManyRequests}
	})
	if err == nil || calls != 3 {
		t.Fatalf("expected failure after 3 calls, got calls=%d err=%v", calls, err)
	}
}

func TestDelayHonorsRetryAfterCappedByMax(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	delay, ok := policy.Delay(context.Background(), &StatusError{StatusCode: 429, RetryAfter: time.Minute}, 1)
	if !ok || delay != 5*time.Second {
		t.Fatalf("expected capped 5s retry, got %v %v", delay, ok)
	}
}

func TestDelayRetryIf(t *testing.T) {
	sentinel := errors.New("empty content")
	policy := Policy{MaxAttempts: 2, BaseDelay: time.Second, RetryIf: func(err error) bool { return errors.Is(err, sentinel) }}
	if _, ok := policy.Delay(context.Background(), sentinel, 1); !ok {
		t.Fatal("expected RetryIf error to be retried")
	}
	if _, ok := policy.Delay(context.Background(), errors.New("other"), 1); ok {
		t.Fatal("unexpected retry for unrelated error")
	}
}

func TestDelayStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := Default().Delay(ctx, &StatusError{StatusCode: 500}, 1); ok {
		t.Fatal("cancelled context must not retry")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := ParseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("seconds form: %v %v", d, ok)
	}
	if _, ok := ParseRetryAfter("-1"); ok {
		t.Fatal("negative seconds should be rejected")
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if d, ok := ParseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("date form: %v %v", d, ok)
	}
	if _, ok := ParseRetryAfter("soon"); ok {
		t.Fatal("garbage should be rejected")
	}
}

func TestWrapClassifiesStatus(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&StatusError{StatusCode: http.StatusForbidden}, services.KindConfiguration},
		{&StatusError{StatusCode: http.StatusNotFound}, services.KindNotFound},
		{&StatusError{StatusCode: http.StatusBadGateway}, services.KindTransient},
		{&StatusError{StatusCode: http.StatusBadRequest}, services.KindExternal},
		{context.DeadlineExceeded, services.KindTimeout},
		{errors.New("boom"), services.KindExternal},
	}
	for _, tc := range cases {
		wrapped := Wrap("google translate", "translate", tc.err)
		if got := services.FailureKind(wrapped); got != tc.want {
			t.Errorf("FailureKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
		if !errors.Is(wrapped, tc.err) {
			t.Errorf("wrapped error lost cause %v", tc.err)
		}
	}
	if Wrap("x", "y", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
