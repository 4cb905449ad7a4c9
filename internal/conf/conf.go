package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/usecase"
	"github.com/DevRickLin/channel-summariser/internal/infra/llm"
	"github.com/DevRickLin/channel-summariser/internal/service"
)

// Supported chat platforms
const (
	PlatformDiscord = "discord"
	PlatformFeishu  = "feishu"
)

// Config represents application configuration
type Config struct {
	// Chat platform: discord or feishu
	Platform string

	// Discord configuration
	Discord DiscordConfig

	// Feishu configuration
	Feishu FeishuConfig

	// Summarizer configuration
	Summarizer SummarizerConfig

	// Delivery configuration
	Delivery DeliveryConfig

	// Audit log configuration
	Audit AuditConfig

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig
}

// DiscordConfig contains Discord configuration
type DiscordConfig struct {
	Token   string
	GuildID string // Optional, registers the command in one guild only
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// SummarizerConfig contains LLM provider configuration
type SummarizerConfig struct {
	Provider        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	OllamaHost      string
	Model           string
	TimeoutSeconds  int
}

// DeliveryConfig contains summary delivery configuration
type DeliveryConfig struct {
	Mode                string
	ShareTimeoutSeconds int
}

// AuditConfig contains audit log configuration
type AuditConfig struct {
	DBPath string // "off" disables the audit log
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Audit DB path
	auditDBPath := os.Getenv("AUDIT_DB_PATH")
	if auditDBPath == "" {
		homeDir, _ := os.UserHomeDir()
		auditDBPath = filepath.Join(homeDir, ".channel-summariser", "audit.db")
	}

	// Load prompts from YAML
	promptsConfigPath := os.Getenv("PROMPTS_CONFIG_PATH")
	promptsConfig, err := LoadPromptsConfig(promptsConfigPath)
	if err != nil {
		fmt.Printf("[Config] Warning: %v, using default prompts\n", err)
		promptsConfig = DefaultPromptsConfig()
	}

	platform := strings.ToLower(os.Getenv("CHAT_PLATFORM"))
	if platform == "" {
		platform = PlatformDiscord
	}

	provider := strings.ToLower(os.Getenv("SUMMARIZER_PROVIDER"))
	if provider == "" {
		provider = llm.ProviderGemini
	}

	mode := strings.ToLower(os.Getenv("DELIVERY_MODE"))
	if mode == "" {
		mode = string(domain.DeliveryPrivate)
	}

	return &Config{
		Platform: platform,
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Summarizer: SummarizerConfig{
			Provider:        provider,
			GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
			OllamaHost:      os.Getenv("OLLAMA_HOST"),
			Model:           os.Getenv("SUMMARIZER_MODEL"),
			TimeoutSeconds:  envInt("SUMMARIZER_TIMEOUT_SECONDS", 60),
		},
		Delivery: DeliveryConfig{
			Mode:                mode,
			ShareTimeoutSeconds: envInt("SHARE_TIMEOUT_SECONDS", 300),
		},
		Audit: AuditConfig{
			DBPath: auditDBPath,
		},
		Prompts: promptsConfig,
	}
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// LLMOptions converts to provider client options
func (c *SummarizerConfig) LLMOptions() llm.Options {
	opts := llm.Options{
		Provider: c.Provider,
		Model:    c.Model,
	}
	switch c.Provider {
	case llm.ProviderGemini:
		opts.APIKey = c.GeminiAPIKey
	case llm.ProviderOpenAI:
		opts.APIKey = c.OpenAIAPIKey
		opts.BaseURL = c.OpenAIBaseURL
	case llm.ProviderAnthropic:
		opts.APIKey = c.AnthropicAPIKey
	case llm.ProviderOllama:
		opts.BaseURL = c.OllamaHost
	}
	return opts
}

// Timeout returns the per-call summarizer deadline
func (c *SummarizerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DeliveryMode returns the typed delivery mode
func (c *DeliveryConfig) DeliveryMode() domain.DeliveryMode {
	return domain.DeliveryMode(c.Mode)
}

// ShareTimeout returns how long share controls stay usable
func (c *DeliveryConfig) ShareTimeout() time.Duration {
	return time.Duration(c.ShareTimeoutSeconds) * time.Second
}

// ToPromptConfig converts to prompt configuration
func (c *Config) ToPromptConfig() usecase.PromptConfig {
	if c.Prompts == nil {
		return usecase.DefaultPromptConfig
	}
	return usecase.PromptConfig{
		Template:      c.Prompts.Summary.Template,
		Title:         c.Prompts.Summary.Title,
		FooterPrivate: c.Prompts.Summary.FooterPrivate,
		FooterPublic:  c.Prompts.Summary.FooterPublic,
		NoMessages:    c.Prompts.Replies.NoMessages,
		BotsOnly:      c.Prompts.Replies.BotsOnly,
	}
}

// ToMessages converts to the service's user-facing strings
func (c *Config) ToMessages() service.Messages {
	if c.Prompts == nil {
		return service.DefaultMessages
	}
	r := c.Prompts.Replies
	return service.Messages{
		Error:         r.Error,
		ShareFailed:   r.ShareFailed,
		SharedTitle:   r.SharedTitle,
		SharedBody:    r.SharedBody,
		AlreadyShared: r.AlreadyShared,
		ShareExpired:  r.ShareExpired,
		ShareBusy:     r.ShareBusy,
		ShareNotOwner: r.ShareNotOwner,
		ShareLabel:    r.ShareLabel,
		ShareEmoji:    r.ShareEmoji,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformDiscord:
		if c.Discord.Token == "" {
			return &ConfigError{Field: "DISCORD_TOKEN", Message: "environment variable not found"}
		}
	case PlatformFeishu:
		if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
			return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "environment variable not found"}
		}
	default:
		return &ConfigError{Field: "CHAT_PLATFORM", Message: "unknown platform " + strconv.Quote(c.Platform)}
	}

	if err := c.ValidateSummarizer(); err != nil {
		return err
	}

	switch c.Delivery.DeliveryMode() {
	case domain.DeliveryPrivate, domain.DeliveryPublic:
	default:
		return &ConfigError{Field: "DELIVERY_MODE", Message: "must be private or public"}
	}
	if c.Delivery.ShareTimeoutSeconds <= 0 {
		return &ConfigError{Field: "SHARE_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	return nil
}

// ValidateSummarizer checks the provider and its credential only
func (c *Config) ValidateSummarizer() error {
	s := c.Summarizer
	switch s.Provider {
	case llm.ProviderGemini:
		if s.GeminiAPIKey == "" {
			return &ConfigError{Field: "GEMINI_API_KEY", Message: "environment variable not found"}
		}
	case llm.ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return &ConfigError{Field: "OPENAI_API_KEY", Message: "environment variable not found"}
		}
	case llm.ProviderAnthropic:
		if s.AnthropicAPIKey == "" {
			return &ConfigError{Field: "ANTHROPIC_API_KEY", Message: "environment variable not found"}
		}
	case llm.ProviderOllama:
		// Local server, no key
	default:
		return &ConfigError{Field: "SUMMARIZER_PROVIDER", Message: "unknown provider " + strconv.Quote(s.Provider)}
	}
	if s.TimeoutSeconds <= 0 {
		return &ConfigError{Field: "SUMMARIZER_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
