package summarize

import (
	"context"
	"fmt"
	"strings"
)

const summaryInstruction = "You are an expert summarizer. Create a concise, easy-to-read summary of the following text. The summary should be about 3-4 sentences long."

type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GroqProvider is the synchronous shape: one hosted completion call.
type GroqProvider struct {
	llm      TextCompleter
	maxChars int
}

func NewGroqProvider(llm TextCompleter, maxChars int) *GroqProvider {
	return &GroqProvider{llm: llm, maxChars: maxChars}
}

func (p *GroqProvider) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nText:\n%s", summaryInstruction, Truncate(text, p.maxChars))

	summary, err := p.llm.Complete(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
