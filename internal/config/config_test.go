package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Segmenter.MaxChars != 60 {
		t.Errorf("MaxChars = %d, want 60", cfg.Segmenter.MaxChars)
	}
	if cfg.Segmenter.MaxDuration != 5.0 {
		t.Errorf("MaxDuration = %g, want 5.0", cfg.Segmenter.MaxDuration)
	}
	if cfg.Segmenter.SilenceThreshold != 0.6 {
		t.Errorf("SilenceThreshold = %g, want 0.6", cfg.Segmenter.SilenceThreshold)
	}
	if cfg.Segmenter.PunctuationBreaks != ".!?" {
		t.Errorf("PunctuationBreaks = %q, want .!?", cfg.Segmenter.PunctuationBreaks)
	}
	if cfg.Engine.Name != "whispercpp" {
		t.Errorf("Engine.Name = %q, want whispercpp", cfg.Engine.Name)
	}
}

func TestLoad_MissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"), false)
	if err != nil {
		t.Fatalf("missing optional file should fall back to defaults, got %v", err)
	}
	if cfg.Segmenter.MaxChars != 60 {
		t.Errorf("expected default MaxChars, got %d", cfg.Segmenter.MaxChars)
	}
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), true); err == nil {
		t.Fatal("expected error for missing required config file")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
segment_level = true

[segmenter]
max_chars = 42
silence_threshold = 0.8

[engine]
name = "remote"
api_url = "http://localhost:9000/transcribe"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Segmenter.MaxChars != 42 {
		t.Errorf("MaxChars = %d, want 42", cfg.Segmenter.MaxChars)
	}
	if cfg.Segmenter.SilenceThreshold != 0.8 {
		t.Errorf("SilenceThreshold = %g, want 0.8", cfg.Segmenter.SilenceThreshold)
	}
	// Untouched keys keep their defaults.
	if cfg.Segmenter.MaxDuration != 5.0 {
		t.Errorf("MaxDuration = %g, want default 5.0", cfg.Segmenter.MaxDuration)
	}
	if !cfg.SegmentLevel {
		t.Error("SegmentLevel should be true")
	}
	if cfg.Engine.Name != "remote" || cfg.Engine.APIURL != "http://localhost:9000/transcribe" {
		t.Errorf("engine = %+v", cfg.Engine)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[segmenter\nmax_chars = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Fatal("expected parse error for malformed TOML")
	}
}
