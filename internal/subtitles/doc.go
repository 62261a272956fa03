// Package subtitles models caption cues and converts between the WebVTT files
// served by the course host and the SubRip files written to disk.
//
// ParseSRT and ParseVTT decode into []Cue, renumbering from 1 in source order.
// FormatSRT renders the canonical SRT form. ConvertVTTToSRT chains the two for
// callers that only need bytes. Cue text is carried verbatim, including
// embedded line breaks, so a translated cue can replace it without touching
// timing.
package subtitles
