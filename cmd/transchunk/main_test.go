package main

import (
	"testing"

	"github.com/goccy/go-yaml"
)

const sampleConfig = `
max_output_tokens: 4000
max_context_tokens: 128000
context_cap_fraction: 0.25
sliding_window_size: 5
boundary_search_window_fraction: 0.12
overlap_sentences: 1
protected_term_repeat_threshold: 4
encoding: o200k_base
token_counter_cache_size: 1024
`

func TestFileConfig_YAML(t *testing.T) {
	var cfg fileConfig
	if err := yaml.Unmarshal([]byte(sampleConfig), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxOutputTokens != 4000 || cfg.MaxContextTokens != 128000 {
		t.Errorf("token limits = %d/%d, want 4000/128000", cfg.MaxOutputTokens, cfg.MaxContextTokens)
	}
	if cfg.ContextCapFraction != 0.25 || cfg.SlidingWindowSize != 5 {
		t.Errorf("memory settings = %g/%d, want 0.25/5", cfg.ContextCapFraction, cfg.SlidingWindowSize)
	}
	if cfg.BoundaryWindowFraction != 0.12 || cfg.OverlapSentences != 1 {
		t.Errorf("boundary settings = %g/%d, want 0.12/1", cfg.BoundaryWindowFraction, cfg.OverlapSentences)
	}
	if cfg.ProtectedTermThreshold != 4 {
		t.Errorf("protected threshold = %d, want 4", cfg.ProtectedTermThreshold)
	}
	if cfg.Encoding != "o200k_base" || cfg.TokenCounterCacheSize != 1024 {
		t.Errorf("tokenizer settings = %q/%d, want o200k_base/1024", cfg.Encoding, cfg.TokenCounterCacheSize)
	}
}

func TestMergeConfig(t *testing.T) {
	var file fileConfig
	if err := yaml.Unmarshal([]byte(sampleConfig), &file); err != nil {
		t.Fatal(err)
	}

	f := cliFlags{cfg: fileConfig{
		MaxOutputTokens: 2000, // set on the command line
		Encoding:        "cl100k_base",
	}}
	set := map[string]bool{"max-output-tokens": true}

	mergeConfig(&f, set, file)

	// Explicit flags win; everything else comes from the file.
	if f.cfg.MaxOutputTokens != 2000 {
		t.Errorf("MaxOutputTokens = %d, want the flag value 2000", f.cfg.MaxOutputTokens)
	}
	if f.cfg.MaxContextTokens != 128000 {
		t.Errorf("MaxContextTokens = %d, want the file value 128000", f.cfg.MaxContextTokens)
	}
	if f.cfg.Encoding != "o200k_base" {
		t.Errorf("Encoding = %q, want the file value", f.cfg.Encoding)
	}
	if f.cfg.SlidingWindowSize != 5 || f.cfg.OverlapSentences != 1 {
		t.Errorf("merged settings = %d/%d, want 5/1", f.cfg.SlidingWindowSize, f.cfg.OverlapSentences)
	}
}

func TestMergeConfig_EmptyFileKeepsFlags(t *testing.T) {
	f := cliFlags{cfg: fileConfig{
		MaxOutputTokens:    3000,
		ContextCapFraction: 0.2,
		Encoding:           "cl100k_base",
	}}

	mergeConfig(&f, map[string]bool{}, fileConfig{})

	if f.cfg.MaxOutputTokens != 3000 || f.cfg.ContextCapFraction != 0.2 || f.cfg.Encoding != "cl100k_base" {
		t.Errorf("empty file overwrote defaults: %+v", f.cfg)
	}
}
