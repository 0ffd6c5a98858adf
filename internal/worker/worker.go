package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/ffmpeg"
	"github.com/Lixo88/Subtitleler/internal/stt"
	"github.com/Lixo88/Subtitleler/internal/subtitle"
)

// Options configures a batch run.
type Options struct {
	// Inputs are audio/video files or directories to scan.
	Inputs    []string
	OutputDir string
	Config    *config.Config
	// NoAsync disables concurrent chunk transcription for long files.
	NoAsync bool
	// ShowProgress renders a progress bar across the batch.
	ShowProgress bool
}

// FileResult records the outcome for one input file.
type FileResult struct {
	Input    string
	Output   string
	Cues     int
	Duration float64
	Err      error
}

// Run transcribes every resolved input file and writes one SRT per file.
// Per-file failures are recorded and logged, not fatal; Run only returns
// an error when nothing can proceed at all.
func Run(ctx context.Context, opts Options) ([]FileResult, error) {
	files, err := resolveInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no audio files found")
	}

	// Caller-supplied tuning is rejected up front, never mid-batch.
	segOpts := segmenterOptions(opts.Config)
	if err := segOpts.Validate(); err != nil {
		return nil, err
	}

	engine, err := stt.New(opts.Config.Engine)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	slog.Info("processing batch", "files", len(files), "engine", engine.Name())

	var bar *progressbar.ProgressBar
	if opts.ShowProgress && len(files) > 1 {
		bar = progressbar.Default(int64(len(files)), "transcribing")
	}

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res := processFile(ctx, engine, file, segOpts, opts)
		if res.Err != nil {
			slog.Error("file failed", "file", filepath.Base(file), "err", res.Err)
		}
		results = append(results, res)

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return results, nil
}

func segmenterOptions(cfg *config.Config) subtitle.Options {
	return subtitle.Options{
		MaxChars:          cfg.Segmenter.MaxChars,
		MaxDuration:       cfg.Segmenter.MaxDuration,
		SilenceThreshold:  cfg.Segmenter.SilenceThreshold,
		PunctuationBreaks: cfg.Segmenter.PunctuationBreaks,
	}
}

// resolveInputs expands directories into the audio/video files they hold,
// non-recursively. Explicit file paths pass through untouched.
func resolveInputs(inputs []string) ([]string, error) {
	var files []string
	for _, input := range inputs {
		stat, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !stat.IsDir() {
			files = append(files, input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", input, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if ffmpeg.IsAudioExtension(ext) || ffmpeg.IsVideoExtension(ext) {
				files = append(files, filepath.Join(input, entry.Name()))
			}
		}
	}
	return files, nil
}

// processFile runs the full per-file pipeline: probe, normalize to WAV,
// transcribe (splitting long inputs into chunks), segment, write SRT.
func processFile(ctx context.Context, engine stt.Engine, inputPath string, segOpts subtitle.Options, opts Options) FileResult {
	res := FileResult{Input: inputPath}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(inputPath)
	}
	res.Output = filepath.Join(outDir, base+".srt")

	slog.Info("processing file", "input", filepath.Base(inputPath))

	info := ffmpeg.LogMediaInfo(ctx, inputPath)
	duration := 0.0
	if info != nil {
		duration = info.Duration
	}
	res.Duration = duration

	// Normalize to 16 kHz mono WAV first; whisper decodes that without
	// surprises and video containers lose their video stream here.
	workingPath := inputPath
	if ffmpeg.Available() && !strings.EqualFold(filepath.Ext(inputPath), ".wav") {
		tempWAV := filepath.Join(filepath.Dir(inputPath), base+"_temp.wav")
		if err := ffmpeg.ExtractWAV(ctx, inputPath, tempWAV); err != nil {
			res.Err = fmt.Errorf("normalize audio: %w", err)
			return res
		}
		workingPath = tempWAV
		if !opts.Config.KeepWAV {
			defer os.Remove(tempWAV)
		}
	}

	var transcript *subtitle.Transcript
	var err error

	splitSec := opts.Config.SplitDurationMin * 60
	if splitSec > 0 && duration > float64(splitSec) && ffmpeg.Available() {
		slog.Info("file duration exceeds split threshold, splitting",
			"duration_min", int(duration/60), "threshold_min", opts.Config.SplitDurationMin)

		chunks, splitErr := ffmpeg.SplitAudio(ctx, workingPath, filepath.Dir(workingPath), splitSec)
		if splitErr != nil {
			res.Err = fmt.Errorf("split audio: %w", splitErr)
			return res
		}
		defer cleanupChunks(chunks)
		slog.Info("split into chunks", "count", len(chunks))

		if !opts.NoAsync && len(chunks) > 1 {
			transcript, err = processConcurrent(ctx, engine, chunks, splitSec, opts.Config)
		} else {
			transcript, err = processSequential(ctx, engine, chunks, splitSec, opts.Config)
		}
	} else {
		transcript, err = transcribeWithProgress(ctx, engine, workingPath)
	}
	if err != nil {
		res.Err = fmt.Errorf("transcribe: %w", err)
		return res
	}
	if transcript == nil || len(transcript.Segments) == 0 {
		res.Err = fmt.Errorf("empty transcript received")
		return res
	}

	cues, err := buildCues(transcript, segOpts, opts.Config.SegmentLevel, inputPath)
	if err != nil {
		res.Err = err
		return res
	}
	if len(cues) == 0 {
		res.Err = fmt.Errorf("transcript produced no subtitle cues")
		return res
	}

	if err := subtitle.WriteSRT(res.Output, cues); err != nil {
		res.Err = err
		return res
	}

	res.Cues = len(cues)
	slog.Info("SRT file saved", "path", res.Output, "cues", res.Cues)
	return res
}

// buildCues runs the word segmenter, falling back to one cue per segment
// when the transcript has no word-level data or when segment-level output
// was requested outright.
func buildCues(transcript *subtitle.Transcript, segOpts subtitle.Options, segmentLevel bool, inputPath string) ([]subtitle.Chunk, error) {
	if segmentLevel {
		return subtitle.FromSegments(transcript.Segments), nil
	}

	words := subtitle.CollectWords(transcript.Segments)
	cues, err := subtitle.SegmentWords(words, segOpts)
	if errors.Is(err, subtitle.ErrNoWordData) {
		slog.Warn("no word timestamps in transcript, writing segment-level cues",
			"file", filepath.Base(inputPath))
		return subtitle.FromSegments(transcript.Segments), nil
	}
	if err != nil {
		return nil, err
	}
	return cues, nil
}

func transcribeWithProgress(ctx context.Context, engine stt.Engine, path string) (*subtitle.Transcript, error) {
	progress := func(done, total int64) {
		pct := 0.0
		if total > 0 {
			pct = math.Min(float64(done)/float64(total)*100, 100)
		}
		slog.Debug("transcription progress", "percent", fmt.Sprintf("%.1f%%", pct))
	}

	return engine.Transcribe(ctx, path, progress)
}

// applyTimeOffset shifts all segment and word timestamps by offsetSec,
// rounding to millisecond precision.
func applyTimeOffset(transcript *subtitle.Transcript, offsetSec float64) {
	round := func(v float64) float64 {
		return math.Round((v+offsetSec)*1000) / 1000
	}
	for i := range transcript.Segments {
		seg := &transcript.Segments[i]
		seg.Start = round(seg.Start)
		seg.End = round(seg.End)
		for j := range seg.Words {
			seg.Words[j].Start = round(seg.Words[j].Start)
			seg.Words[j].End = round(seg.Words[j].End)
		}
	}
}

func cleanupChunks(chunks []string) {
	for _, chunk := range chunks {
		if err := os.Remove(chunk); err != nil && !os.IsNotExist(err) {
			slog.Debug("cleanup chunk", "file", filepath.Base(chunk), "err", err)
		}
	}
	slog.Debug("temp chunk cleanup complete")
}
