package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Lixo88/Subtitleler/internal/config"
	"github.com/Lixo88/Subtitleler/internal/ffmpeg"
	"github.com/Lixo88/Subtitleler/internal/worker"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file-or-folder>...",
	Short: "Transcribe audio files to SRT subtitles",
	Long: `Transcribe one or more audio/video files into SRT subtitle files. Folder
arguments are scanned for supported audio files, matching the classic
"point it at a folder of .m4a recordings" workflow.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranscribe,
}

var (
	configPath string
	outputDir  string
	noAsync    bool

	// Engine flags.
	engineName string
	language   string
	modelsDir  string
	model      string
	threads    uint
	apiURL     string
	apiToken   string

	// Segmenter tuning flags.
	maxChars         int
	maxDuration      float64
	silenceThreshold float64
	punctuation      string
	segmentLevel     bool

	// Batch tuning flags.
	keepWAV       bool
	maxConcurrent int
	maxRetries    int
	rateLimit     int
	splitDuration int
)

func init() {
	defaults := config.Default()

	transcribeCmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file (default: "+config.DefaultPath()+")")
	transcribeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default: next to each input)")
	transcribeCmd.Flags().BoolVar(&noAsync, "no-async", false, "disable concurrent chunk processing")

	transcribeCmd.Flags().StringVar(&engineName, "engine", defaults.Engine.Name, "speech-to-text engine: whispercpp, remote")
	transcribeCmd.Flags().StringVarP(&language, "language", "l", defaults.Engine.Language, "language code, or auto")
	transcribeCmd.Flags().StringVar(&modelsDir, "models-dir", defaults.Engine.ModelsDir, "directory holding whisper ggml models")
	transcribeCmd.Flags().StringVar(&model, "model", defaults.Engine.Model, "whisper ggml model file")
	transcribeCmd.Flags().UintVar(&threads, "threads", defaults.Engine.Threads, "whisper decode threads (0 = auto)")
	transcribeCmd.Flags().StringVar(&apiURL, "api-url", defaults.Engine.APIURL, "remote engine endpoint URL")
	transcribeCmd.Flags().StringVar(&apiToken, "api-token", defaults.Engine.APIToken, "remote engine bearer token")

	transcribeCmd.Flags().IntVar(&maxChars, "max-chars", defaults.Segmenter.MaxChars, "max characters per subtitle cue")
	transcribeCmd.Flags().Float64Var(&maxDuration, "max-duration", defaults.Segmenter.MaxDuration, "max seconds per subtitle cue")
	transcribeCmd.Flags().Float64Var(&silenceThreshold, "silence-threshold", defaults.Segmenter.SilenceThreshold, "pause length in seconds that forces a cut")
	transcribeCmd.Flags().StringVar(&punctuation, "punctuation", defaults.Segmenter.PunctuationBreaks, "characters that close a cue when ending a word")
	transcribeCmd.Flags().BoolVar(&segmentLevel, "segment-level", false, "write one cue per recognizer segment, skipping the word segmenter")

	transcribeCmd.Flags().BoolVar(&keepWAV, "keep-wav", false, "keep the normalized temp WAV files")
	transcribeCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", defaults.MaxConcurrentChunks, "max concurrent chunk transcriptions")
	transcribeCmd.Flags().IntVar(&maxRetries, "max-retries", defaults.MaxRetries, "max retries per chunk")
	transcribeCmd.Flags().IntVar(&rateLimit, "rate-limit", defaults.APIRateLimitPerMin, "remote requests per minute")
	transcribeCmd.Flags().IntVar(&splitDuration, "split-duration", defaults.SplitDurationMin, "audio split threshold in minutes (0 disables)")

	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputs, err := validateInputs(args)
	if err != nil {
		return err
	}

	// Graceful cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := worker.Run(ctx, worker.Options{
		Inputs:       inputs,
		OutputDir:    outputDir,
		Config:       cfg,
		NoAsync:      noAsync,
		ShowProgress: !quiet && !verbose,
	})
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Println(renderSummary(results))
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d files failed", failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// loadConfig reads the TOML config (when present) and lets explicitly set
// flags override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	required := path != ""
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine.Name = engineName
	}
	if flags.Changed("language") {
		cfg.Engine.Language = language
	}
	if flags.Changed("models-dir") {
		cfg.Engine.ModelsDir = modelsDir
	}
	if flags.Changed("model") {
		cfg.Engine.Model = model
	}
	if flags.Changed("threads") {
		cfg.Engine.Threads = threads
	}
	if flags.Changed("api-url") {
		cfg.Engine.APIURL = apiURL
	}
	if flags.Changed("api-token") {
		cfg.Engine.APIToken = apiToken
	}
	if flags.Changed("max-chars") {
		cfg.Segmenter.MaxChars = maxChars
	}
	if flags.Changed("max-duration") {
		cfg.Segmenter.MaxDuration = maxDuration
	}
	if flags.Changed("silence-threshold") {
		cfg.Segmenter.SilenceThreshold = silenceThreshold
	}
	if flags.Changed("punctuation") {
		cfg.Segmenter.PunctuationBreaks = punctuation
	}
	if segmentLevel {
		cfg.SegmentLevel = true
	}
	if keepWAV {
		cfg.KeepWAV = true
	}
	if flags.Changed("max-concurrent") {
		cfg.MaxConcurrentChunks = maxConcurrent
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = maxRetries
	}
	if flags.Changed("rate-limit") {
		cfg.APIRateLimitPerMin = rateLimit
	}
	if flags.Changed("split-duration") {
		cfg.SplitDurationMin = splitDuration
	}

	return cfg, nil
}

// validateInputs resolves arguments to absolute paths and rejects files
// with unsupported extensions up front. Directories pass through; the
// worker scans them.
func validateInputs(args []string) ([]string, error) {
	inputs := make([]string, 0, len(args))
	for _, arg := range args {
		absPath, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}

		stat, err := os.Stat(absPath)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", arg)
		} else if err != nil {
			return nil, err
		}

		if !stat.IsDir() {
			ext := strings.ToLower(filepath.Ext(absPath))
			if !ffmpeg.IsAudioExtension(ext) && !ffmpeg.IsVideoExtension(ext) {
				return nil, fmt.Errorf("unsupported file type: %s", ext)
			}
		}

		inputs = append(inputs, absPath)
	}
	return inputs, nil
}
