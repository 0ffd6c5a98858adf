package subtitle

// Word is a single recognized word with timestamps in seconds. Text may
// carry leading/trailing whitespace exactly as emitted by the recognizer.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one recognizer segment. Word-level data is optional;
// segments without it still carry their own text and bounds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is the full recognizer result for one audio file.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Text     string    `json:"text,omitempty"`
	Segments []Segment `json:"segments"`
}

// Chunk is one finalized subtitle cue: the span of its first word's start
// to its last word's end, with trimmed, space-joined text.
type Chunk struct {
	Start float64
	End   float64
	Text  string
}
