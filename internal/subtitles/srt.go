package subtitles

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"coursecaptions/internal/services"
)

// ParseSRT decodes SubRip content. Cues are renumbered 1..N in file order and
// every cue must end at or after its start.
func ParseSRT(data []byte) ([]Cue, error) {
	blocks := splitBlocks(data)
	cues := make([]Cue, 0, len(blocks))
	for n, block := range blocks {
		lines := block
		if !strings.Contains(lines[0], "-->") && isNumeric(lines[0]) {
			lines = lines[1:]
		}
		if len(lines) == 0 {
			return nil, parseError("parse srt", n+1, errors.New("block has no timing line"))
		}
		cue, err := parseCue(lines)
		if err != nil {
			return nil, parseError("parse srt", n+1, err)
		}
		cue.Index = len(cues) + 1
		cues = append(cues, cue)
	}
	return cues, nil
}

// FormatSRT renders cues as SRT using their Index values. Each block ends with
// a blank line.
func FormatSRT(cues []Cue) []byte {
	var buf bytes.Buffer
	for _, cue := range cues {
		buf.WriteString(strconv.Itoa(cue.Index))
		buf.WriteByte('\n')
		buf.WriteString(FormatTimestamp(cue.Start))
		buf.WriteString(" --> ")
		buf.WriteString(FormatTimestamp(cue.End))
		buf.WriteByte('\n')
		buf.WriteString(strings.ReplaceAll(cue.Text, "\r\n", "\n"))
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}

// parseCue reads a timing line followed by text lines.
func parseCue(lines []string) (Cue, error) {
	start, end, err := parseTimingLine(lines[0])
	if err != nil {
		return Cue{}, err
	}
	if end < start {
		return Cue{}, fmt.Errorf("end %s before start %s", FormatTimestamp(end), FormatTimestamp(start))
	}
	return Cue{
		Start: start,
		End:   end,
		Text:  strings.Join(lines[1:], "\n"),
	}, nil
}

// splitBlocks normalizes line endings and groups lines separated by blank
// lines. Trailing whitespace is dropped from every line.
func splitBlocks(data []byte) [][]string {
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var blocks [][]string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func isNumeric(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	_, err := strconv.Atoi(value)
	return err == nil
}

func parseError(op string, block int, err error) error {
	return services.Wrap(services.ErrValidation, "subtitles", op, fmt.Sprintf("block %d", block), err)
}
