package summarize

import "context"

// Provider produces a short abstractive summary of normalized text. Two
// shapes exist: a single synchronous completion (Groq) and a submit-then-poll
// job (Poll). Which one runs is a deployment choice, not a code path the
// pipeline knows about.
type Provider interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Truncate caps provider input. The cut is silent and lossy; provider token
// limits win over completeness here.
func Truncate(text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		return text[:maxChars]
	}
	return text
}
