package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

func TestResolveInputs_ScansDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.m4a", "b.mp3", "notes.txt", "c.srt", "clip.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := resolveInputs([]string{dir})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "a.m4a"),
		filepath.Join(dir, "b.mp3"),
		filepath.Join(dir, "clip.mp4"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files %v, want %d", len(files), files, len(want))
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestResolveInputs_ExplicitFilePassesThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "take.weird")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := resolveInputs([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("got %v, want [%s]", files, path)
	}
}

func TestResolveInputs_MissingPath(t *testing.T) {
	if _, err := resolveInputs([]string{filepath.Join(t.TempDir(), "gone.m4a")}); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestBuildCues_WordLevel(t *testing.T) {
	transcript := &subtitle.Transcript{
		Segments: []subtitle.Segment{
			{Text: "Hola mundo.", Start: 0, End: 1, Words: []subtitle.Word{
				{Text: "Hola", Start: 0, End: 0.4},
				{Text: "mundo.", Start: 0.4, End: 0.9},
			}},
		},
	}

	cues, err := buildCues(transcript, subtitle.DefaultOptions(), false, "in.m4a")
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 || cues[0].Text != "Hola mundo." {
		t.Errorf("cues = %+v", cues)
	}
}

func TestBuildCues_FallsBackWithoutWords(t *testing.T) {
	transcript := &subtitle.Transcript{
		Segments: []subtitle.Segment{
			{Text: " Primera frase. ", Start: 0, End: 2},
			{Text: "Segunda.", Start: 2, End: 4},
		},
	}

	cues, err := buildCues(transcript, subtitle.DefaultOptions(), false, "in.m4a")
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 segment-level cues, got %d", len(cues))
	}
	if cues[0].Text != "Primera frase." {
		t.Errorf("first cue = %+v", cues[0])
	}
}

func TestBuildCues_SegmentLevelForced(t *testing.T) {
	transcript := &subtitle.Transcript{
		Segments: []subtitle.Segment{
			{Text: "Todo junto aquí.", Start: 0, End: 2, Words: []subtitle.Word{
				{Text: "Todo", Start: 0, End: 0.5},
				{Text: "junto", Start: 0.5, End: 1.0},
				{Text: "aquí.", Start: 1.0, End: 1.5},
			}},
		},
	}

	cues, err := buildCues(transcript, subtitle.DefaultOptions(), true, "in.m4a")
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 || cues[0].End != 2 {
		t.Errorf("expected the segment's own bounds, got %+v", cues)
	}
}

func TestApplyTimeOffset(t *testing.T) {
	transcript := &subtitle.Transcript{
		Segments: []subtitle.Segment{
			{Text: "hola", Start: 0.5, End: 1.25, Words: []subtitle.Word{
				{Text: "hola", Start: 0.5, End: 1.25},
			}},
		},
	}

	applyTimeOffset(transcript, 90)

	seg := transcript.Segments[0]
	if seg.Start != 90.5 || seg.End != 91.25 {
		t.Errorf("segment offsets wrong: %+v", seg)
	}
	if seg.Words[0].Start != 90.5 || seg.Words[0].End != 91.25 {
		t.Errorf("word offsets wrong: %+v", seg.Words[0])
	}
}
