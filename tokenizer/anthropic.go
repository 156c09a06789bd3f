package tokenizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Anthropic counts tokens through Anthropic's native token-counting endpoint.
// Every call is a network round trip; wrap it in Cached when driving the
// engine's binary search, and bring a timeout on the context.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates a remote counter for the given model.
func NewAnthropic(client *anthropic.Client, model anthropic.Model) *Anthropic {
	return &Anthropic{client: client, model: model}
}

// CountTokens counts tokens in text via the Anthropic API.
func (t *Anthropic) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if t.client == nil {
		return 0, errors.New("anthropic client is required for token counting")
	}

	result, err := t.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model: t.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("anthropic token counting failed: %w", err)
	}
	return int(result.InputTokens), nil
}
