package summarizer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini summarizes via the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed summarizer with the provided client and
// model.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// Summarize sends the summarization request to Gemini.
func (s *Gemini) Summarize(ctx context.Context, text string, budgetTokens int) (string, error) {
	if text == "" || budgetTokens <= 0 {
		return "", nil
	}
	if s.client == nil {
		return "", errors.New("gemini client is required for summarization")
	}
	if s.model == "" {
		return "", errors.New("gemini model is required for summarization")
	}

	maxTokens := int32(budgetTokens)
	result, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(prompt(text, budgetTokens)),
		&genai.GenerateContentConfig{MaxOutputTokens: maxTokens},
	)
	if err != nil {
		return "", fmt.Errorf("gemini summarization failed: %w", err)
	}
	return result.Text(), nil
}
