package subtitles

import (
	"errors"
	"strings"
)

var vttEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
	"&lrm;", "",
	"&rlm;", "",
)

// ParseVTT decodes WebVTT content. The header, NOTE, STYLE and REGION blocks
// and cue settings are discarded; cue identifiers are replaced by sequential
// indices.
func ParseVTT(data []byte) ([]Cue, error) {
	blocks := splitBlocks(data)
	if len(blocks) == 0 {
		return nil, parseError("parse vtt", 1, errors.New("empty document"))
	}
	header := blocks[0][0]
	if header != "WEBVTT" && !strings.HasPrefix(header, "WEBVTT ") && !strings.HasPrefix(header, "WEBVTT\t") {
		return nil, parseError("parse vtt", 1, errors.New("missing WEBVTT header"))
	}

	// Some hosts omit the blank line after the header, leaving the first cue
	// inside the header block.
	rest := blocks[1:]
	for i, line := range blocks[0][1:] {
		if strings.Contains(line, "-->") {
			start := i
			if start > 0 {
				start--
			}
			rest = append([][]string{blocks[0][1+start:]}, rest...)
			break
		}
	}

	cues := make([]Cue, 0, len(rest))
	for n, block := range rest {
		if isVTTMetadataBlock(block[0]) {
			continue
		}
		lines := block
		if !strings.Contains(lines[0], "-->") {
			lines = lines[1:]
		}
		if len(lines) == 0 || !strings.Contains(lines[0], "-->") {
			return nil, parseError("parse vtt", n+2, errors.New("block has no timing line"))
		}
		cue, err := parseCue(lines)
		if err != nil {
			return nil, parseError("parse vtt", n+2, err)
		}
		cue.Index = len(cues) + 1
		cue.Text = vttEntities.Replace(cue.Text)
		cues = append(cues, cue)
	}
	return cues, nil
}

// ConvertVTTToSRT rewrites WebVTT captions as SRT.
func ConvertVTTToSRT(data []byte) ([]byte, error) {
	cues, err := ParseVTT(data)
	if err != nil {
		return nil, err
	}
	return FormatSRT(cues), nil
}

func isVTTMetadataBlock(line string) bool {
	for _, keyword := range []string{"NOTE", "STYLE", "REGION"} {
		if line == keyword || strings.HasPrefix(line, keyword+" ") || strings.HasPrefix(line, keyword+"\t") {
			return true
		}
	}
	return false
}
