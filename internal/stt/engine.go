package stt

import (
	"context"
	"fmt"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

// ProgressFunc is called with (done, total) while an engine works through
// a file. Units depend on the engine: bytes for uploads, percent for
// local decoding.
type ProgressFunc func(done, total int64)

// Engine turns an audio file into a timed transcript.
type Engine interface {
	// Transcribe recognizes the audio at path. The returned transcript
	// carries segments in time order, with word-level timestamps when the
	// engine can produce them.
	Transcribe(ctx context.Context, path string, progress ProgressFunc) (*subtitle.Transcript, error)

	// Name identifies the engine in logs.
	Name() string

	// Close releases engine resources.
	Close() error
}

// New builds the engine selected by cfg.
func New(cfg config.Engine) (Engine, error) {
	switch cfg.Name {
	case "", "whispercpp":
		return NewWhisperEngine(cfg)
	case "remote":
		return NewRemoteEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown stt engine %q", cfg.Name)
	}
}
