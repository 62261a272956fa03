package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("go-basics"), "go-basics"},
		{slog.StringValue("two words"), `"two words"`},
		{slog.StringValue(""), `""`},
		{slog.IntValue(42), "42"},
		{slog.BoolValue(true), "true"},
		{slog.DurationValue(1234567 * time.Microsecond), "1.23s"},
		{slog.DurationValue(15400 * time.Microsecond), "15ms"},
		{slog.AnyValue(errors.New("http 503")), `"http 503"`},
	}
	for _, tt := range tests {
		if got := formatValue(tt.value); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
	if got := attrString(slog.StringValue("01 intro.txt")); got != "01 intro.txt" {
		t.Errorf("attrString should not quote, got %q", got)
	}
}

func TestJSONHandlerReportsDurationsInMilliseconds(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))
	logger.Info("lecture translated", slog.Duration("elapsed", 1500*time.Millisecond))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if payload["elapsed_ms"] != float64(1500) {
		t.Fatalf("expected elapsed_ms 1500, got %v", payload)
	}
	if _, ok := payload["elapsed"]; ok {
		t.Fatalf("raw duration key should be renamed: %v", payload)
	}
	ts, _ := payload["ts"].(string)
	if _, err := time.Parse(jsonTimeLayout, ts); err != nil {
		t.Fatalf("unexpected ts %q: %v", ts, err)
	}
}
