package subtitles

import (
	"errors"
	"fmt"
	"time"

	"coursecaptions/internal/services"
)

// Cue is a single timed caption.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration reports how long the cue stays on screen.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Texts returns the text of each cue in order.
func Texts(cues []Cue) []string {
	out := make([]string, len(cues))
	for i, cue := range cues {
		out[i] = cue.Text
	}
	return out
}

// ValidateCues reports cues that are out of sequence or end before they start.
func ValidateCues(cues []Cue) error {
	var problems []error
	for i, cue := range cues {
		if cue.Index != i+1 {
			problems = append(problems, fmt.Errorf("cue %d: index %d out of sequence", i+1, cue.Index))
		}
		if cue.Start < 0 {
			problems = append(problems, fmt.Errorf("cue %d: negative start %s", i+1, FormatTimestamp(cue.Start)))
		}
		if cue.End < cue.Start {
			problems = append(problems, fmt.Errorf(
				"cue %d: end %s before start %s",
				i+1, FormatTimestamp(cue.End), FormatTimestamp(cue.Start),
			))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "subtitles", "validate cues", "", errors.Join(problems...))
}
