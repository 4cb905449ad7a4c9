package repo

import "context"

// SummarizerRepo is the LLM summarisation interface
type SummarizerRepo interface {
	// Summarize sends the prompt and returns the raw text of the response
	Summarize(ctx context.Context, prompt string) (string, error)

	// Name returns the display name of the service, used in attribution
	Name() string
}
