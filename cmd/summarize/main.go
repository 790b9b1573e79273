// Command summarize runs the summarization pipeline once from the command
// line, without the server, ledger, or database. It is meant for local
// experiments and for smoke-testing engine configuration.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"summarly/internal/domain/entity"
	"summarly/internal/infra/extractor"
	"summarly/internal/infra/summarizer"
	"summarly/internal/utils/text"
)

type options struct {
	text      string
	file      string
	strategy  string
	tone      string
	output    string
	maxLength int
	minLength int
	sentences int
	timeout   time.Duration
}

type jsonResult struct {
	Summary          string  `json:"summary"`
	Strategy         string  `json:"strategy"`
	Tone             string  `json:"tone"`
	InputWords       int     `json:"input_words"`
	SummaryWords     int     `json:"summary_words"`
	CompressionRatio float64 `json:"compression_ratio"`
	ElapsedMS        int64   `json:"elapsed_ms"`
}

func main() {
	opts := parseFlags()
	logger := initLogger()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	input, err := readInput(ctx, opts)
	if err != nil {
		logger.Error("failed to read input", slog.Any("error", err))
		os.Exit(1)
	}

	normalized := text.Normalize(input)
	if normalized == "" {
		logger.Error("input is empty after normalization")
		os.Exit(1)
	}

	strategy, err := entity.ParseStrategy(opts.strategy)
	if err != nil {
		logger.Error("invalid strategy", slog.Any("error", err))
		os.Exit(1)
	}
	tone, err := entity.ParseTone(opts.tone)
	if err != nil {
		logger.Error("invalid tone", slog.Any("error", err))
		os.Exit(1)
	}

	engine := buildEngine(strategy, logger)
	params := summarizer.Params{
		MaxOutputLength: opts.maxLength,
		MinOutputLength: opts.minLength,
		SentenceCount:   opts.sentences,
	}

	start := time.Now()
	summary, err := engine.Summarize(ctx, normalized, params)
	if err != nil {
		logger.Error("summarization failed", slog.Any("error", err))
		os.Exit(1)
	}
	toned := summarizer.ApplyTone(summary, tone)
	elapsed := time.Since(start)

	switch opts.output {
	case "json":
		outputJSON(toned, strategy, tone, normalized, elapsed)
	default:
		outputText(toned, strategy, tone, elapsed)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.text, "text", "", "text to summarize (mutually exclusive with -file)")
	flag.StringVar(&opts.file, "file", "", "document to summarize: pdf, docx, pptx, html, or txt")
	flag.StringVar(&opts.strategy, "strategy", "extractive", "summarization strategy: abstractive or extractive")
	flag.StringVar(&opts.tone, "tone", "formal", "output tone: formal, casual, or bullet")
	flag.StringVar(&opts.output, "output", "text", "output format: text or json")
	flag.IntVar(&opts.maxLength, "max-length", 130, "maximum summary length in words")
	flag.IntVar(&opts.minLength, "min-length", 30, "minimum summary length in words")
	flag.IntVar(&opts.sentences, "sentences", 3, "sentence count for the extractive strategy")
	flag.DurationVar(&opts.timeout, "timeout", 120*time.Second, "overall timeout")
	flag.Parse()

	if (opts.text == "") == (opts.file == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -text or -file is required")
		flag.Usage()
		os.Exit(2)
	}
	return opts
}

// initLogger writes logs to stderr so stdout stays clean for the result.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func readInput(ctx context.Context, opts options) (string, error) {
	if opts.text != "" {
		return opts.text, nil
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return "", err
	}
	format, err := extractor.DetectFormat(opts.file, "")
	if err != nil {
		return "", err
	}
	result, err := extractor.New(extractor.DefaultConfig()).Extract(ctx, data, format)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func buildEngine(strategy entity.Strategy, logger *slog.Logger) summarizer.Engine {
	if strategy == entity.StrategyExtractive {
		return summarizer.NewExtractive(nil)
	}
	return summarizer.NewAbstractive(func() (summarizer.ModelBackend, error) {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return summarizer.NewClaude(key), nil
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg, err := summarizer.LoadOpenAIConfig()
			if err != nil {
				return nil, err
			}
			return summarizer.NewOpenAI(key, cfg), nil
		}
		logger.Warn("no model API key configured, falling back to truncation")
		return summarizer.NewNoOp(), nil
	}, summarizer.NoOpSummaryMetrics{})
}

func outputText(summary string, strategy entity.Strategy, tone entity.Tone, elapsed time.Duration) {
	fmt.Printf("Strategy: %s\n", strategy)
	fmt.Printf("Tone:     %s\n", tone)
	fmt.Printf("Elapsed:  %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Println(summary)
}

func outputJSON(summary string, strategy entity.Strategy, tone entity.Tone, input string, elapsed time.Duration) {
	inputWords := text.CountWords(input)
	result := jsonResult{
		Summary:      summary,
		Strategy:     string(strategy),
		Tone:         string(tone),
		InputWords:   inputWords,
		SummaryWords: text.CountWords(summary),
		ElapsedMS:    elapsed.Milliseconds(),
	}
	if inputRunes := text.CountRunes(input); inputRunes > 0 {
		result.CompressionRatio = float64(text.CountRunes(summary)) / float64(inputRunes)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		slog.Error("failed to encode result", slog.Any("error", err))
		os.Exit(1)
	}
}
