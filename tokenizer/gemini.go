package tokenizer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini counts tokens through Gemini's native token-counting endpoint.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a remote counter for the given client and model.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// CountTokens counts tokens in text via the Gemini API.
func (t *Gemini) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if t.client == nil {
		return 0, errors.New("gemini client is required for token counting")
	}
	if t.model == "" {
		return 0, errors.New("gemini model is required for token counting")
	}

	result, err := t.client.Models.CountTokens(ctx, t.model, genai.Text(text), nil)
	if err != nil {
		return 0, fmt.Errorf("gemini token counting failed: %w", err)
	}
	return int(result.TotalTokens), nil
}
