package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const defaultPollInterval = 250 * time.Millisecond

// Matcher reports whether a log line should be shown. A nil Matcher accepts
// every line.
type Matcher func(line string) bool

// Result holds the lines read and the file offset to resume from.
type Result struct {
	Lines  []string
	Offset int64
}

// MatchFields accepts JSON records whose top-level fields equal every
// non-empty value in fields. Values are compared as strings, case-insensitively.
func MatchFields(fields map[string]string) Matcher {
	wanted := make(map[string]string, len(fields))
	for key, value := range fields {
		if value = strings.TrimSpace(value); value != "" {
			wanted[key] = value
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	return func(line string) bool {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return false
		}
		for key, value := range wanted {
			got, ok := record[key]
			if !ok || !strings.EqualFold(fmt.Sprint(got), value) {
				return false
			}
		}
		return true
	}
}

// Tail returns up to limit matching lines from the end of path. A missing
// file yields an empty result.
func Tail(path string, limit int, match Matcher) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("log path %q is a directory", path)
	}
	if limit <= 0 {
		return Result{Offset: info.Size()}, nil
	}

	ring := make([]string, limit)
	count, next := 0, 0
	offset, err := scanLines(file, match, func(line string) {
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return Result{}, err
	}

	lines := make([]string, count)
	start := 0
	if count == limit {
		start = next
	}
	for i := range lines {
		lines[i] = ring[(start+i)%limit]
	}
	return Result{Lines: lines, Offset: offset}, nil
}

// Follow polls path from offset and calls emit for every new matching line
// until ctx is done. A file that shrinks is read again from the start.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, match Matcher, emit func(string)) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, match, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, match Matcher, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if offset == info.Size() {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scanLines(file, match, emit)
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scanLines feeds complete lines to emit and returns the number of bytes
// consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, match Matcher, emit func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if match == nil || match(line) {
			emit(line)
		}
	}
}
