package subtitles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp accepts SRT (00:00:01,500) and WebVTT (00:00:01.500 or
// 00:01.500) timestamps.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty timestamp")
	}
	clock, frac, ok := strings.Cut(strings.Replace(value, ",", ".", 1), ".")
	if !ok || frac == "" || len(frac) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q: milliseconds required", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: minutes and seconds must be below 60", value)
	}
	millis, err := strconv.Atoi(frac + strings.Repeat("0", 3-len(frac)))
	if err != nil || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	return time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// FormatTimestamp renders d as an SRT timestamp, truncated to milliseconds.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", int64(h), int64(m), int64(s), int64(ms))
}

func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	startText, rest, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, errors.New("missing --> separator")
	}
	// WebVTT cue settings follow the end timestamp.
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, 0, errors.New("missing end timestamp")
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}
