package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaClient generates text with a local Ollama server
type OllamaClient struct {
	client *ollama.Client
	model  string
}

// NewOllamaClient creates an Ollama client for host (empty uses localhost)
func NewOllamaClient(host, model string) (*OllamaClient, error) {
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	// Deadlines come from the request context
	return &OllamaClient{
		client: ollama.NewClient(u, &http.Client{}),
		model:  model,
	}, nil
}

// Generate streams the completion and returns the joined text
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	var text strings.Builder

	req := &ollama.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
	}
	err := c.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return text.String(), nil
}

// DisplayName returns the service name
func (c *OllamaClient) DisplayName() string {
	return "Ollama (" + c.model + ")"
}

// Close is a no-op
func (c *OllamaClient) Close() error {
	return nil
}
