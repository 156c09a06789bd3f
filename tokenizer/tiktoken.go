// Package tokenizer provides TokenCounter implementations: local tiktoken
// counting, remote API-backed counting for Anthropic and Gemini models, and
// an LRU-cached decorator for the engine's binary-search probes.
package tokenizer

import (
	"context"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Tiktoken counts tokens locally with a tiktoken encoding. This is fast and
// exact for OpenAI-family models and a close proxy for most others.
type Tiktoken struct {
	codec tokenizer.Codec
}

// encodings maps configuration names to tiktoken encodings.
var encodings = map[string]tokenizer.Encoding{
	"cl100k_base": tokenizer.Cl100kBase,
	"o200k_base":  tokenizer.O200kBase,
}

// NewTiktoken creates a local counter for the named encoding. An empty name
// selects cl100k_base.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, ok := encodings[encoding]
	if !ok {
		return nil, fmt.Errorf("unknown tiktoken encoding %q", encoding)
	}
	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return &Tiktoken{codec: codec}, nil
}

// CountTokens counts tokens in text. The context is unused; counting is
// local.
func (t *Tiktoken) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("tokenization failed: %w", err)
	}
	return len(ids), nil
}
