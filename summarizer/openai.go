package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAIConfig provides configuration options for the OpenAI summarizer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string
}

// OpenAI summarizes via an OpenAI chat completion.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed summarizer. The API key falls back to
// the OPENAI_API_KEY environment variable.
func NewOpenAI(config OpenAIConfig) (*OpenAI, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
	}

	model := config.Model
	if model == "" {
		model = string(DefaultOpenAIModel)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model}, nil
}

// Summarize sends the summarization request to OpenAI. The budget is passed
// as the completion token ceiling; callers still verify the output size.
func (s *OpenAI) Summarize(ctx context.Context, text string, budgetTokens int) (string, error) {
	if text == "" || budgetTokens <= 0 {
		return "", nil
	}
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt(text, budgetTokens)),
		},
		MaxCompletionTokens: openai.Int(int64(budgetTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai summarization failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai summarization returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
