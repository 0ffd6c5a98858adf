package subtitle

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoWordData means the transcript carried no word-level timestamps.
	// Recoverable: the caller can skip the file or fall back to
	// segment-level cues.
	ErrNoWordData = errors.New("no word-level timestamps in transcript")

	// ErrInvalidOptions is wrapped by every Options validation failure.
	ErrInvalidOptions = errors.New("invalid segmenter options")
)

// Options control how recognized words are grouped into subtitle chunks.
type Options struct {
	// MaxChars is the maximum cue text length in runes.
	MaxChars int
	// MaxDuration is the maximum cue duration in seconds.
	MaxDuration float64
	// SilenceThreshold is the pause length, in seconds, between the end of
	// one word and the start of the next that forces a cut.
	SilenceThreshold float64
	// PunctuationBreaks are the characters that close a cue when they end
	// a word.
	PunctuationBreaks string
}

// DefaultOptions returns the tuning used when the caller overrides nothing.
func DefaultOptions() Options {
	return Options{
		MaxChars:          60,
		MaxDuration:       5.0,
		SilenceThreshold:  0.6,
		PunctuationBreaks: ".!?",
	}
}

// Validate rejects caller-supplied options before segmentation starts.
func (o Options) Validate() error {
	if o.MaxChars <= 0 {
		return fmt.Errorf("%w: max chars must be positive, got %d", ErrInvalidOptions, o.MaxChars)
	}
	if o.MaxDuration <= 0 {
		return fmt.Errorf("%w: max duration must be positive, got %g", ErrInvalidOptions, o.MaxDuration)
	}
	if o.SilenceThreshold < 0 {
		return fmt.Errorf("%w: silence threshold must not be negative, got %g", ErrInvalidOptions, o.SilenceThreshold)
	}
	return nil
}

// SegmentWords partitions an ordered word sequence into subtitle chunks in a
// single greedy forward pass. Cut conditions are checked in strict order:
// length overflow, duration overflow, silence gap. A word that trips none
// of them is absorbed into the open chunk; only then may strong
// punctuation at its end close the chunk, and never on the last word of
// the input (the final flush handles that one).
//
// Words must already be ordered by start time; the recognizer's ordering
// is trusted, not re-derived.
func SegmentWords(words []Word, opts Options) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoWordData
	}

	var (
		chunks      []Chunk
		open        *Chunk
		prevWordEnd float64
	)

	for i, w := range words {
		trimmed := strings.TrimSpace(w.Text)

		// The first word of a chunk is never rejected, even when it
		// already exceeds MaxChars on its own.
		if open == nil {
			open = &Chunk{Start: w.Start, End: w.End, Text: trimmed}
			prevWordEnd = w.End
			continue
		}

		proposedText := strings.TrimSpace(open.Text + " " + trimmed)
		proposedDuration := w.End - open.Start

		switch {
		case utf8.RuneCountInString(proposedText) > opts.MaxChars:
			chunks = append(chunks, *open)
			open = &Chunk{Start: w.Start, End: w.End, Text: trimmed}

		case proposedDuration > opts.MaxDuration:
			chunks = append(chunks, *open)
			open = &Chunk{Start: w.Start, End: w.End, Text: trimmed}

		case w.Start-prevWordEnd >= opts.SilenceThreshold && len(open.Text) > 0:
			chunks = append(chunks, *open)
			open = &Chunk{Start: w.Start, End: w.End, Text: trimmed}

		default:
			open.End = w.End
			open.Text = proposedText

			if endsWithBreak(trimmed, opts.PunctuationBreaks) && i < len(words)-1 {
				chunks = append(chunks, *open)
				open = nil
			}
		}

		prevWordEnd = w.End
	}

	// Flush the open chunk. A chunk left open by a punctuation cut has no
	// words and is never emitted.
	if open != nil && open.Text != "" {
		chunks = append(chunks, *open)
	}

	return chunks, nil
}

func endsWithBreak(word, breaks string) bool {
	if word == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(word)
	return strings.ContainsRune(breaks, last)
}
