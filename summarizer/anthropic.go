package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = anthropic.Model("claude-3-5-sonnet-latest")

// Anthropic summarizes via the Anthropic Messages API.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates an Anthropic-backed summarizer with the provided
// client. An empty model selects DefaultAnthropicModel.
func NewAnthropic(client *anthropic.Client, model anthropic.Model) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{client: client, model: model}
}

// Summarize sends the summarization request to Anthropic.
func (s *Anthropic) Summarize(ctx context.Context, text string, budgetTokens int) (string, error) {
	if text == "" || budgetTokens <= 0 {
		return "", nil
	}
	if s.client == nil {
		return "", errors.New("anthropic client is required for summarization")
	}

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: int64(budgetTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt(text, budgetTokens))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic summarization failed: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic summarization returned no text")
}
