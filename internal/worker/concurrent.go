package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/stt"
	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

type chunkResult struct {
	Index      int
	Transcript *subtitle.Transcript
}

// processConcurrent transcribes chunks with bounded parallelism, request
// rate limiting, and per-chunk retry with exponential backoff.
func processConcurrent(ctx context.Context, engine stt.Engine, chunks []string, splitDurationSec int, cfg *config.Config) (*subtitle.Transcript, error) {
	slog.Info("starting concurrent chunk processing",
		"chunks", len(chunks),
		"max_concurrent", cfg.MaxConcurrentChunks,
		"rate_limit_rpm", cfg.APIRateLimitPerMin)

	// Rate limiter: tokens per second = RPM / 60.
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.APIRateLimitPerMin)/60.0), 1)

	var (
		mu      sync.Mutex
		results []chunkResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrentChunks)

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}

			slog.Info("starting chunk", "chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)))

			var transcript *subtitle.Transcript
			var lastErr error

			for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				t, err := transcribeWithProgress(gctx, engine, chunk)
				if err == nil {
					transcript = t
					break
				}

				lastErr = err
				if attempt < cfg.MaxRetries-1 {
					backoff := 1 << uint(attempt) // 1s, 2s, 4s...
					slog.Warn("chunk failed, retrying",
						"chunk", i+1,
						"attempt", attempt+1,
						"backoff_sec", backoff,
						"err", err)

					timer := time.NewTimer(time.Duration(backoff) * time.Second)
					select {
					case <-gctx.Done():
						timer.Stop()
						return gctx.Err()
					case <-timer.C:
					}
				}
			}

			if transcript == nil {
				return fmt.Errorf("chunk %d/%d failed after %d retries: %w",
					i+1, len(chunks), cfg.MaxRetries, lastErr)
			}

			if i > 0 {
				applyTimeOffset(transcript, float64(i*splitDurationSec))
			}

			mu.Lock()
			results = append(results, chunkResult{Index: i, Transcript: transcript})
			mu.Unlock()

			slog.Info("chunk completed", "chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// If some chunks already made it, finish the rest sequentially.
		mu.Lock()
		completedCount := len(results)
		mu.Unlock()

		if completedCount > 0 {
			slog.Warn("concurrent processing partially failed, falling back to sequential",
				"completed", completedCount, "total", len(chunks), "err", err)
			return fallbackToSequential(ctx, engine, chunks, splitDurationSec, results)
		}
		return nil, err
	}

	return mergeResults(results), nil
}

func mergeResults(results []chunkResult) *subtitle.Transcript {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	combined := &subtitle.Transcript{
		Language: results[0].Transcript.Language,
	}

	for _, r := range results {
		combined.Segments = append(combined.Segments, r.Transcript.Segments...)
		if combined.Text != "" && r.Transcript.Text != "" {
			combined.Text += " "
		}
		combined.Text += r.Transcript.Text
	}

	return combined
}

func fallbackToSequential(ctx context.Context, engine stt.Engine, chunks []string, splitDurationSec int, completed []chunkResult) (*subtitle.Transcript, error) {
	slog.Info("falling back to sequential processing for remaining chunks")

	done := make(map[int]bool)
	for _, r := range completed {
		done[r.Index] = true
	}

	for i, chunk := range chunks {
		if done[i] {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		slog.Info("sequential fallback processing chunk", "chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)))

		transcript, err := transcribeWithProgress(ctx, engine, chunk)
		if err != nil {
			return nil, fmt.Errorf("sequential fallback chunk %d/%d: %w", i+1, len(chunks), err)
		}

		if i > 0 {
			applyTimeOffset(transcript, float64(i*splitDurationSec))
		}

		completed = append(completed, chunkResult{Index: i, Transcript: transcript})
	}

	return mergeResults(completed), nil
}
