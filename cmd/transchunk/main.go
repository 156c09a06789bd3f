// Command transchunk splits a document into token-budgeted, context-aware
// chunks and writes them as JSON, one run per invocation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"

	transchunk "github.com/translatekit/transchunk"
	"github.com/translatekit/transchunk/chunk"
	"github.com/translatekit/transchunk/options"
)

// fileConfig is the YAML configuration surface. Flags given explicitly on
// the command line override it.
type fileConfig struct {
	MaxOutputTokens         int     `yaml:"max_output_tokens"`
	MaxContextTokens        int     `yaml:"max_context_tokens"`
	ContextCapFraction      float64 `yaml:"context_cap_fraction"`
	SlidingWindowSize       int     `yaml:"sliding_window_size"`
	BoundaryWindowFraction  float64 `yaml:"boundary_search_window_fraction"`
	OverlapSentences        int     `yaml:"overlap_sentences"`
	ProtectedTermThreshold  int     `yaml:"protected_term_repeat_threshold"`
	Encoding                string  `yaml:"encoding"`
	TokenCounterCacheSize   int     `yaml:"token_counter_cache_size"`
}

type cliFlags struct {
	input      string
	output     string
	configPath string
	logLevel   string

	cfg fileConfig
}

func parseFlags() (cliFlags, map[string]bool) {
	var f cliFlags
	flag.StringVar(&f.input, "input", "", "input document path (- for stdin)")
	flag.StringVar(&f.output, "output", "", "output path for the chunk JSON (default stdout)")
	flag.StringVar(&f.configPath, "config", "", "optional YAML config file")
	flag.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flag.IntVar(&f.cfg.MaxOutputTokens, "max-output-tokens", 0, "model output token limit per chunk (required)")
	flag.IntVar(&f.cfg.MaxContextTokens, "max-context-tokens", 0, "model input token limit (0 skips the check)")
	flag.Float64Var(&f.cfg.ContextCapFraction, "cap-fraction", options.DefaultContextCapFraction, "share of the output limit reserved for carried context")
	flag.IntVar(&f.cfg.SlidingWindowSize, "window", options.DefaultSlidingWindowSize, "recent summaries kept verbatim")
	flag.Float64Var(&f.cfg.BoundaryWindowFraction, "boundary-window", options.DefaultBoundaryWindowFraction, "trailing span share searched for a boundary")
	flag.IntVar(&f.cfg.OverlapSentences, "overlap-sentences", options.DefaultOverlapSentences, "sentences duplicated across chunk boundaries")
	flag.IntVar(&f.cfg.ProtectedTermThreshold, "protected-threshold", options.DefaultProtectedThreshold, "appearance count protecting a term from trimming")
	flag.StringVar(&f.cfg.Encoding, "encoding", "cl100k_base", "tiktoken encoding name")
	flag.IntVar(&f.cfg.TokenCounterCacheSize, "counter-cache", 0, "token count LRU size (0 for default)")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set
}

// mergeConfig overlays the YAML file under any flag not set explicitly.
func mergeConfig(f *cliFlags, set map[string]bool, file fileConfig) {
	if !set["max-output-tokens"] && file.MaxOutputTokens != 0 {
		f.cfg.MaxOutputTokens = file.MaxOutputTokens
	}
	if !set["max-context-tokens"] && file.MaxContextTokens != 0 {
		f.cfg.MaxContextTokens = file.MaxContextTokens
	}
	if !set["cap-fraction"] && file.ContextCapFraction != 0 {
		f.cfg.ContextCapFraction = file.ContextCapFraction
	}
	if !set["window"] && file.SlidingWindowSize != 0 {
		f.cfg.SlidingWindowSize = file.SlidingWindowSize
	}
	if !set["boundary-window"] && file.BoundaryWindowFraction != 0 {
		f.cfg.BoundaryWindowFraction = file.BoundaryWindowFraction
	}
	if !set["overlap-sentences"] && file.OverlapSentences != 0 {
		f.cfg.OverlapSentences = file.OverlapSentences
	}
	if !set["protected-threshold"] && file.ProtectedTermThreshold != 0 {
		f.cfg.ProtectedTermThreshold = file.ProtectedTermThreshold
	}
	if !set["encoding"] && file.Encoding != "" {
		f.cfg.Encoding = file.Encoding
	}
	if !set["counter-cache"] && file.TokenCounterCacheSize != 0 {
		f.cfg.TokenCounterCacheSize = file.TokenCounterCacheSize
	}
}

type output struct {
	Chunks []chunk.Chunk    `json:"chunks"`
	Stats  transchunk.Stats `json:"stats"`
}

func main() {
	f, set := parseFlags()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(f.logLevel); err == nil {
		logger.SetLevel(level)
	}

	if f.configPath != "" {
		data, err := os.ReadFile(f.configPath)
		if err != nil {
			logger.Fatal("read config", "path", f.configPath, "err", err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			logger.Fatal("parse config", "path", f.configPath, "err", err)
		}
		mergeConfig(&f, set, file)
	}

	if f.input == "" {
		logger.Fatal("missing required -input argument")
	}
	if f.cfg.MaxOutputTokens <= 0 {
		logger.Fatal("missing required -max-output-tokens argument")
	}

	doc, err := readInput(f.input)
	if err != nil {
		logger.Fatal("read input", "path", f.input, "err", err)
	}

	engine, err := transchunk.New(
		options.WithTiktokenCounter(f.cfg.Encoding, f.cfg.TokenCounterCacheSize),
		options.WithMaxOutputTokens(f.cfg.MaxOutputTokens),
		options.WithMaxContextTokens(f.cfg.MaxContextTokens),
		options.WithContextCapFraction(f.cfg.ContextCapFraction),
		options.WithSlidingWindowSize(f.cfg.SlidingWindowSize),
		options.WithBoundaryWindowFraction(f.cfg.BoundaryWindowFraction),
		options.WithOverlapSentences(f.cfg.OverlapSentences),
		options.WithProtectedTermThreshold(f.cfg.ProtectedTermThreshold),
	)
	if err != nil {
		logger.Fatal("configure engine", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("chunking", "bytes", len(doc), "max_output_tokens", f.cfg.MaxOutputTokens,
		"context_cap_tokens", engine.ContextCapTokens())

	chunks, err := engine.ChunkDocument(ctx, doc)
	if err != nil {
		// Partial output is still worth writing; the error says where the
		// run halted.
		logger.Error("chunking halted", "err", err, "committed", len(chunks))
		var runErr *transchunk.RunError
		if !errors.As(err, &runErr) || len(chunks) == 0 {
			os.Exit(1)
		}
	}

	if issues := chunk.Validate(chunks, f.cfg.MaxOutputTokens); len(issues) > 0 {
		for _, issue := range issues {
			logger.Warn("validation", "issue", issue)
		}
	}

	stats := transchunk.ComputeStats(chunks)
	logger.Info("done", "chunks", stats.TotalChunks, "tokens", stats.TotalTokens,
		"avg_boundary_score", fmt.Sprintf("%.2f", stats.AvgBoundaryScore))

	if err := writeOutput(f.output, output{Chunks: chunks, Stats: stats}); err != nil {
		logger.Fatal("write output", "err", err)
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func writeOutput(path string, out output) error {
	w := os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
