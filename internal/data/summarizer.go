package data

import (
	"context"
	"fmt"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/infra/llm"
)

// summarizerRepo implements the summarizer repository over an LLM client
type summarizerRepo struct {
	client  llm.Client
	timeout time.Duration
}

// NewSummarizerRepo creates a summarizer repository.
// timeout bounds each call; zero leaves the caller's deadline alone.
func NewSummarizerRepo(client llm.Client, timeout time.Duration) repo.SummarizerRepo {
	return &summarizerRepo{client: client, timeout: timeout}
}

// Summarize sends the prompt to the model
func (r *summarizerRepo) Summarize(ctx context.Context, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := r.client.Generate(ctx, prompt)
	if err != nil {
		fmt.Printf("[Summarizer] %s failed after %v: %v\n", r.client.DisplayName(), time.Since(start).Round(time.Millisecond), err)
		return "", err
	}

	fmt.Printf("[Summarizer] %s answered in %v (%d chars)\n", r.client.DisplayName(), time.Since(start).Round(time.Millisecond), len(text))
	return text, nil
}

// Name returns the service name used in attribution
func (r *summarizerRepo) Name() string {
	return r.client.DisplayName()
}
