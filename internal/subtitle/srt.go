package subtitle

import (
	"fmt"
	"os"
	"strings"
)

// RenderSRT serializes chunks as a SubRip document: 1-indexed blocks of
// index, "start --> end" timing line, cue text, blank line. Timestamps of
// consecutive cues are taken from the chunks as-is, without overlap
// validation.
func RenderSRT(chunks []Chunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text)
	}
	return sb.String()
}

// WriteSRT writes the chunks to path as a UTF-8 SubRip file.
func WriteSRT(path string, chunks []Chunk) error {
	if err := os.WriteFile(path, []byte(RenderSRT(chunks)), 0644); err != nil {
		return fmt.Errorf("write SRT file: %w", err)
	}
	return nil
}
