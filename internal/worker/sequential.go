package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/stt"
	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

// processSequential transcribes chunks one at a time, shifting timestamps
// by each chunk's position in the source audio.
func processSequential(ctx context.Context, engine stt.Engine, chunks []string, splitDurationSec int, cfg *config.Config) (*subtitle.Transcript, error) {
	var combined *subtitle.Transcript

	for i, chunk := range chunks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		slog.Info("processing chunk",
			"chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)),
			"file", filepath.Base(chunk))

		transcript, err := transcribeWithProgress(ctx, engine, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d failed: %w", i+1, len(chunks), err)
		}

		// First chunk needs no offset.
		if i > 0 {
			applyTimeOffset(transcript, float64(i*splitDurationSec))
		}

		if combined == nil {
			combined = transcript
		} else {
			combined.Segments = append(combined.Segments, transcript.Segments...)
			if combined.Text != "" && transcript.Text != "" {
				combined.Text += " "
			}
			combined.Text += transcript.Text
		}

		slog.Info("chunk completed", "chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)))
	}

	return combined, nil
}
