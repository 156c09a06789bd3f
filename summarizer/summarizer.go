// Package summarizer provides implementations of the types.Summarizer
// contract: a local lead-sentence summarizer that needs no model, and
// LLM-backed variants for OpenAI, Anthropic, and Gemini.
package summarizer

import (
	"context"
	"fmt"
	"regexp"

	"github.com/translatekit/transchunk/types"
)

var sentenceEndRe = regexp.MustCompile(`[.!?。！？]['")\]]?(\s+|$)`)

// Lead summarizes by extraction: it keeps the leading sentences of the text,
// cut back to the last complete sentence that fits the token budget. Cheap,
// deterministic, and honest about its budget.
type Lead struct {
	counter types.TokenCounter
}

// NewLead returns a lead-sentence summarizer measuring with counter.
func NewLead(counter types.TokenCounter) *Lead {
	return &Lead{counter: counter}
}

// Summarize returns a prefix of text costing at most budgetTokens.
func (l *Lead) Summarize(ctx context.Context, text string, budgetTokens int) (string, error) {
	if text == "" || budgetTokens <= 0 {
		return "", nil
	}
	n, err := l.counter.CountTokens(ctx, text)
	if err != nil {
		return "", fmt.Errorf("token count: %w", err)
	}
	if n <= budgetTokens {
		return text, nil
	}

	prefix, err := l.maxFit(ctx, text, budgetTokens)
	if err != nil {
		return "", err
	}

	// Prefer ending on a complete sentence; keep the raw prefix when the
	// budget does not even reach the first sentence end.
	if ends := sentenceEndRe.FindAllStringIndex(prefix, -1); len(ends) > 0 {
		return prefix[:ends[len(ends)-1][1]], nil
	}
	return prefix, nil
}

func (l *Lead) maxFit(ctx context.Context, text string, budget int) (string, error) {
	starts := make([]int, 0, len(text)+1)
	for i := range text {
		starts = append(starts, i)
	}
	starts = append(starts, len(text))

	lo, hi, best := 0, len(starts)-1, 0
	for lo <= hi {
		mid := (lo + hi) / 2
		n, err := l.counter.CountTokens(ctx, text[:starts[mid]])
		if err != nil {
			return "", fmt.Errorf("token count: %w", err)
		}
		if n <= budget {
			best = starts[mid]
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return text[:best], nil
}

// prompt is the instruction shared by the LLM-backed summarizers.
func prompt(text string, budgetTokens int) string {
	return fmt.Sprintf(
		"Summarize the following text in at most %d tokens. Keep names, terminology, and numbers exact; they must stay consistent across a translation.\n\n%s",
		budgetTokens, text)
}
