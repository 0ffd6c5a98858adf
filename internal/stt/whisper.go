package stt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

// WhisperEngine runs speech recognition locally through whisper.cpp.
// The model is loaded once and reused for every file in a batch.
type WhisperEngine struct {
	model whisper.Model
	cfg   config.Engine
}

// NewWhisperEngine loads the ggml model named by cfg.
func NewWhisperEngine(cfg config.Engine) (*WhisperEngine, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("whisper model not configured")
	}

	modelPath := cfg.Model
	if !filepath.IsAbs(modelPath) && cfg.ModelsDir != "" {
		modelPath = filepath.Join(cfg.ModelsDir, cfg.Model)
	}

	slog.Info("loading whisper model", "path", modelPath)
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	slog.Debug("whisper model loaded", "multilingual", model.IsMultilingual())

	return &WhisperEngine{model: model, cfg: cfg}, nil
}

// Name returns the engine name.
func (e *WhisperEngine) Name() string { return "whispercpp" }

// Close releases the loaded model.
func (e *WhisperEngine) Close() error { return e.model.Close() }

// Transcribe decodes the audio to 16 kHz mono samples, runs the model with
// token timestamps enabled, and assembles per-segment word lists from the
// decoded tokens.
func (e *WhisperEngine) Transcribe(ctx context.Context, path string, progress ProgressFunc) (*subtitle.Transcript, error) {
	samples, err := ConvertToFloat32(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("convert audio: %w", err)
	}
	slog.Debug("audio converted", "samples", len(samples),
		"duration_sec", float64(len(samples))/float64(targetSampleRate))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}

	if lang := e.cfg.Language; lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			slog.Warn("set language failed", "language", lang, "err", err)
		}
	}
	if e.cfg.Threads > 0 {
		wctx.SetThreads(e.cfg.Threads)
	}
	wctx.SetTokenTimestamps(true)

	var progressCB whisper.ProgressCallback
	if progress != nil {
		progressCB = func(pct int) {
			progress(int64(pct), 100)
		}
	}

	if err := wctx.Process(samples, nil, nil, progressCB); err != nil {
		return nil, fmt.Errorf("whisper process: %w", err)
	}

	transcript := &subtitle.Transcript{Language: e.cfg.Language}
	var text strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("next segment: %w", err)
		}

		transcript.Segments = append(transcript.Segments, subtitle.Segment{
			Text:  seg.Text,
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Words: wordsFromTokens(seg.Tokens),
		})

		if trimmed := strings.TrimSpace(seg.Text); trimmed != "" {
			if text.Len() > 0 {
				text.WriteByte(' ')
			}
			text.WriteString(trimmed)
		}
	}
	transcript.Text = text.String()

	return transcript, nil
}

// wordsFromTokens merges subword tokens into timestamped words. A token
// starting with a space opens a new word; special [_...] markers carry no
// speech and are skipped.
func wordsFromTokens(tokens []whisper.Token) []subtitle.Word {
	var words []subtitle.Word
	for _, tok := range tokens {
		if strings.HasPrefix(tok.Text, "[_") {
			continue
		}
		if len(words) == 0 || strings.HasPrefix(tok.Text, " ") {
			words = append(words, subtitle.Word{
				Text:  tok.Text,
				Start: tok.Start.Seconds(),
				End:   tok.End.Seconds(),
			})
			continue
		}
		last := &words[len(words)-1]
		last.Text += tok.Text
		last.End = tok.End.Seconds()
	}
	return words
}
