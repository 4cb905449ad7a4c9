package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by NewClient
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Default models per provider
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultOllamaModel    = "llama3.2"
)

// Client is a single-prompt text generation client
type Client interface {
	// Generate sends the prompt and returns the response text
	Generate(ctx context.Context, prompt string) (string, error)

	// DisplayName returns the service name shown to users
	DisplayName() string

	Close() error
}

// Options configures a provider client
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // OpenAI-compatible endpoint or Ollama host
}

// NewClient creates the client for opts.Provider
func NewClient(ctx context.Context, opts Options) (Client, error) {
	switch strings.ToLower(opts.Provider) {
	case "", ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey, opts.Model)
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey, opts.Model, opts.BaseURL), nil
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey, opts.Model), nil
	case ProviderOllama:
		return NewOllamaClient(opts.BaseURL, opts.Model)
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", opts.Provider)
	}
}
