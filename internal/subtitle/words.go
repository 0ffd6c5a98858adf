package subtitle

import "strings"

// CollectWords flattens per-segment word lists into a single ordered
// slice. Segments without word-level data are skipped. Segments arrive in
// time order, so the concatenation stays ordered by start.
func CollectWords(segments []Segment) []Word {
	var words []Word
	for _, seg := range segments {
		if len(seg.Words) == 0 {
			continue
		}
		words = append(words, seg.Words...)
	}
	return words
}

// FromSegments builds one cue per segment using the segment's own text and
// bounds. This is the fallback for transcripts without word timestamps;
// segments with blank text are dropped.
func FromSegments(segments []Segment) []Chunk {
	var chunks []Chunk
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{Start: seg.Start, End: seg.End, Text: text})
	}
	return chunks
}
