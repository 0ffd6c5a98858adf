package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Segmenter holds the subtitle segmentation tuning.
type Segmenter struct {
	MaxChars          int     `toml:"max_chars"`
	MaxDuration       float64 `toml:"max_duration"`
	SilenceThreshold  float64 `toml:"silence_threshold"`
	PunctuationBreaks string  `toml:"punctuation_breaks"`
}

// Engine selects and configures the speech-to-text backend.
type Engine struct {
	// Name is "whispercpp" or "remote".
	Name      string `toml:"name"`
	ModelsDir string `toml:"models_dir"`
	Model     string `toml:"model"`
	Language  string `toml:"language"`
	Threads   uint   `toml:"threads"`
	APIURL    string `toml:"api_url"`
	APIToken  string `toml:"api_token"`
}

// Config holds the full application configuration.
type Config struct {
	Segmenter Segmenter `toml:"segmenter"`
	Engine    Engine    `toml:"engine"`

	// SegmentLevel writes one cue per recognizer segment instead of
	// running the word segmenter.
	SegmentLevel bool `toml:"segment_level"`
	// KeepWAV leaves the normalized temp WAV next to the input file.
	KeepWAV bool `toml:"keep_wav"`

	SplitDurationMin    int `toml:"split_duration_min"`
	MaxConcurrentChunks int `toml:"max_concurrent_chunks"`
	MaxRetries          int `toml:"max_retries"`
	APIRateLimitPerMin  int `toml:"api_rate_limit_per_min"`
}

// Default returns a Config with the stock defaults.
func Default() *Config {
	return &Config{
		Segmenter: Segmenter{
			MaxChars:          60,
			MaxDuration:       5.0,
			SilenceThreshold:  0.6,
			PunctuationBreaks: ".!?",
		},
		Engine: Engine{
			Name:      "whispercpp",
			ModelsDir: defaultModelsDir(),
			Model:     "ggml-small.bin",
			Language:  "auto",
		},
		SplitDurationMin:    90,
		MaxConcurrentChunks: 3,
		MaxRetries:          3,
		APIRateLimitPerMin:  30,
	}
}

// Load reads a TOML config file over the defaults. A missing file at the
// default location is not an error; an explicitly requested file must
// exist.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "subtitleler.toml"
	}
	return filepath.Join(dir, "subtitleler", "config.toml")
}

func defaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".cache", "whisper")
}
