package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"coursecaptions/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coursecaptions.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(path, 2, nil)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if !slices.Equal(result.Lines, []string{"b", "c"}) {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", result.Offset)
	}
}

func TestTailLeavesPartialLine(t *testing.T) {
	path := writeLog(t, "a\nb\npart")
	result, err := logs.Tail(path, 10, nil)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if !slices.Equal(result.Lines, []string{"a", "b"}) || result.Offset != 4 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 5, nil)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestMatchFieldsFiltersRecords(t *testing.T) {
	path := writeLog(t, `{"level":"INFO","msg":"course run started","course":"go-basics","run_id":"r1"}
{"level":"INFO","msg":"course run started","course":"rust-intro","run_id":"r2"}
not json
{"level":"WARN","msg":"course run finished with failures","course":"go-basics","run_id":"r1"}
`)
	result, err := logs.Tail(path, 10, logs.MatchFields(map[string]string{"course": "go-basics", "level": "warn"}))
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0][:15] != `{"level":"WARN"` {
		t.Fatalf("unexpected lines %#v", result.Lines)
	}
	if logs.MatchFields(map[string]string{"course": " "}) != nil {
		t.Fatal("expected empty filters to match everything")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	result, err := logs.Tail(path, 1, nil)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}

	var mu sync.Mutex
	var got []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, result.Offset, 10*time.Millisecond, nil, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("next\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	file.Close()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for appended line")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(got, []string{"next"}) {
		t.Fatalf("unexpected followed lines %#v", got)
	}
}
