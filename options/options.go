// Package options provides functional options for configuring chunking
// engine instances.
package options

import (
	"errors"
	"fmt"

	"github.com/translatekit/transchunk/tokenizer"
	"github.com/translatekit/transchunk/types"
)

// Defaults for the recognized configuration surface.
const (
	DefaultContextCapFraction     = 0.20
	DefaultSlidingWindowSize      = 4
	DefaultBoundaryWindowFraction = 0.10
	DefaultOverlapSentences       = 2
	DefaultProtectedThreshold     = 3
)

// Option represents a configuration option for the chunking engine.
type Option func(*Config) error

// Config holds the configuration for building an engine.
type Config struct {
	// Counter measures token counts; required unless a construction option
	// such as WithTiktokenCounter supplies one.
	Counter types.TokenCounter

	// Finder proposes cut positions. Nil selects the regexp finder.
	Finder types.BoundaryFinder

	// Extractor mines salient terms. Nil selects the heuristic extractor.
	Extractor types.TermExtractor

	// Summarizer condenses chunk text. Nil selects the lead-sentence
	// summarizer over Counter.
	Summarizer types.Summarizer

	// MaxOutputTokens is the model's per-request output limit. Required.
	MaxOutputTokens int

	// MaxContextTokens is the model's input limit; zero skips the check.
	MaxContextTokens int

	// ContextCapFraction is the share of MaxOutputTokens reserved for
	// carried context.
	ContextCapFraction float64

	// SlidingWindowSize is the number of recent summaries kept verbatim.
	SlidingWindowSize int

	// BoundaryWindowFraction is the trailing share of a candidate span
	// searched for a quality boundary.
	BoundaryWindowFraction float64

	// OverlapSentences is the size of each boundary bridge in sentences.
	OverlapSentences int

	// ProtectedTermThreshold is the appearance count that protects a
	// glossary term from cap trimming.
	ProtectedTermThreshold int
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		ContextCapFraction:     DefaultContextCapFraction,
		SlidingWindowSize:      DefaultSlidingWindowSize,
		BoundaryWindowFraction: DefaultBoundaryWindowFraction,
		OverlapSentences:       DefaultOverlapSentences,
		ProtectedTermThreshold: DefaultProtectedThreshold,
	}
}

// Apply applies all the given options to the config.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Counter == nil {
		return errors.New("token counter is required - use WithTokenCounter or WithTiktokenCounter")
	}
	if c.MaxOutputTokens <= 0 {
		return errors.New("max output tokens must be positive - use WithMaxOutputTokens")
	}
	if c.MaxContextTokens != 0 && c.MaxContextTokens < c.MaxOutputTokens {
		return fmt.Errorf("max context tokens %d is below max output tokens %d", c.MaxContextTokens, c.MaxOutputTokens)
	}
	if c.ContextCapFraction <= 0 || c.ContextCapFraction >= 1 {
		return fmt.Errorf("context cap fraction %g must be in (0,1)", c.ContextCapFraction)
	}
	if c.SlidingWindowSize <= 0 {
		return errors.New("sliding window size must be positive")
	}
	if c.BoundaryWindowFraction <= 0 || c.BoundaryWindowFraction >= 1 {
		return fmt.Errorf("boundary window fraction %g must be in (0,1)", c.BoundaryWindowFraction)
	}
	return nil
}

// WithTokenCounter sets the token counter.
func WithTokenCounter(counter types.TokenCounter) Option {
	return func(cfg *Config) error {
		if counter == nil {
			return errors.New("token counter cannot be nil")
		}
		cfg.Counter = counter
		return nil
	}
}

// WithTiktokenCounter sets up a local tiktoken counter, wrapped in an LRU
// memoization layer sized for the engine's binary-search probes.
func WithTiktokenCounter(encoding string, cacheSize int) Option {
	return func(cfg *Config) error {
		base, err := tokenizer.NewTiktoken(encoding)
		if err != nil {
			return err
		}
		cached, err := tokenizer.NewCached(base, cacheSize)
		if err != nil {
			return err
		}
		cfg.Counter = cached
		return nil
	}
}

// WithBoundaryFinder sets the boundary segmenter.
func WithBoundaryFinder(finder types.BoundaryFinder) Option {
	return func(cfg *Config) error {
		if finder == nil {
			return errors.New("boundary finder cannot be nil")
		}
		cfg.Finder = finder
		return nil
	}
}

// WithTermExtractor sets the term extractor.
func WithTermExtractor(extractor types.TermExtractor) Option {
	return func(cfg *Config) error {
		if extractor == nil {
			return errors.New("term extractor cannot be nil")
		}
		cfg.Extractor = extractor
		return nil
	}
}

// WithSummarizer sets the summarizer.
func WithSummarizer(summarizer types.Summarizer) Option {
	return func(cfg *Config) error {
		if summarizer == nil {
			return errors.New("summarizer cannot be nil")
		}
		cfg.Summarizer = summarizer
		return nil
	}
}

// WithMaxOutputTokens sets the per-chunk output-token limit.
func WithMaxOutputTokens(n int) Option {
	return func(cfg *Config) error {
		cfg.MaxOutputTokens = n
		return nil
	}
}

// WithMaxContextTokens sets the model input limit used for validation.
func WithMaxContextTokens(n int) Option {
	return func(cfg *Config) error {
		cfg.MaxContextTokens = n
		return nil
	}
}

// WithContextCapFraction sets the share of the output limit reserved for
// carried context.
func WithContextCapFraction(f float64) Option {
	return func(cfg *Config) error {
		cfg.ContextCapFraction = f
		return nil
	}
}

// WithSlidingWindowSize sets how many recent chunk summaries are kept
// verbatim before condensation.
func WithSlidingWindowSize(k int) Option {
	return func(cfg *Config) error {
		cfg.SlidingWindowSize = k
		return nil
	}
}

// WithBoundaryWindowFraction sets the trailing share of a candidate span
// searched for a quality boundary.
func WithBoundaryWindowFraction(f float64) Option {
	return func(cfg *Config) error {
		cfg.BoundaryWindowFraction = f
		return nil
	}
}

// WithOverlapSentences sets the boundary bridge size in sentences.
func WithOverlapSentences(n int) Option {
	return func(cfg *Config) error {
		cfg.OverlapSentences = n
		return nil
	}
}

// WithProtectedTermThreshold sets the appearance count that protects a
// glossary term from cap trimming.
func WithProtectedTermThreshold(n int) Option {
	return func(cfg *Config) error {
		cfg.ProtectedTermThreshold = n
		return nil
	}
}
