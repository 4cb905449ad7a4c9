package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/DevRickLin/channel-summariser/internal/biz/usecase"
	"github.com/DevRickLin/channel-summariser/internal/service"
)

// PromptsConfig contains the prompt and user-facing strings loaded from YAML
type PromptsConfig struct {
	Summary SummaryPrompts `yaml:"summary"`
	Replies ReplyStrings   `yaml:"replies"`
}

// SummaryPrompts contains the summarisation prompt and summary card text
type SummaryPrompts struct {
	Template      string `yaml:"template"`
	Title         string `yaml:"title"`
	FooterPrivate string `yaml:"footer_private"`
	FooterPublic  string `yaml:"footer_public"`
}

// ReplyStrings contains notices, errors and share control text
type ReplyStrings struct {
	NoMessages    string `yaml:"no_messages"`
	BotsOnly      string `yaml:"bots_only"`
	Error         string `yaml:"error"`
	ShareFailed   string `yaml:"share_failed"`
	SharedTitle   string `yaml:"shared_title"`
	SharedBody    string `yaml:"shared_body"`
	AlreadyShared string `yaml:"already_shared"`
	ShareExpired  string `yaml:"share_expired"`
	ShareBusy     string `yaml:"share_busy"`
	ShareNotOwner string `yaml:"share_not_owner"`
	ShareLabel    string `yaml:"share_label"`
	ShareEmoji    string `yaml:"share_emoji"`
}

// LoadPromptsConfig loads prompts configuration from YAML file
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"/etc/channel-summariser/prompts.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string

	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read %s", configPath)
		}
		// Return default config if no file found
		fmt.Println("[Config] No prompts.yaml found, using defaults")
		return DefaultPromptsConfig(), nil
	}

	fmt.Printf("[Config] Loading prompts from: %s\n", loadedPath)

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	d := DefaultPromptsConfig()

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	fill(&c.Summary.Template, d.Summary.Template)
	fill(&c.Summary.Title, d.Summary.Title)
	fill(&c.Summary.FooterPrivate, d.Summary.FooterPrivate)
	fill(&c.Summary.FooterPublic, d.Summary.FooterPublic)

	fill(&c.Replies.NoMessages, d.Replies.NoMessages)
	fill(&c.Replies.BotsOnly, d.Replies.BotsOnly)
	fill(&c.Replies.Error, d.Replies.Error)
	fill(&c.Replies.ShareFailed, d.Replies.ShareFailed)
	fill(&c.Replies.SharedTitle, d.Replies.SharedTitle)
	fill(&c.Replies.SharedBody, d.Replies.SharedBody)
	fill(&c.Replies.AlreadyShared, d.Replies.AlreadyShared)
	fill(&c.Replies.ShareExpired, d.Replies.ShareExpired)
	fill(&c.Replies.ShareBusy, d.Replies.ShareBusy)
	fill(&c.Replies.ShareNotOwner, d.Replies.ShareNotOwner)
	fill(&c.Replies.ShareLabel, d.Replies.ShareLabel)
	fill(&c.Replies.ShareEmoji, d.Replies.ShareEmoji)
}

// DefaultPromptsConfig returns the default prompts configuration
func DefaultPromptsConfig() *PromptsConfig {
	p := usecase.DefaultPromptConfig
	m := service.DefaultMessages
	return &PromptsConfig{
		Summary: SummaryPrompts{
			Template:      p.Template,
			Title:         p.Title,
			FooterPrivate: p.FooterPrivate,
			FooterPublic:  p.FooterPublic,
		},
		Replies: ReplyStrings{
			NoMessages:    p.NoMessages,
			BotsOnly:      p.BotsOnly,
			Error:         m.Error,
			ShareFailed:   m.ShareFailed,
			SharedTitle:   m.SharedTitle,
			SharedBody:    m.SharedBody,
			AlreadyShared: m.AlreadyShared,
			ShareExpired:  m.ShareExpired,
			ShareBusy:     m.ShareBusy,
			ShareNotOwner: m.ShareNotOwner,
			ShareLabel:    m.ShareLabel,
			ShareEmoji:    m.ShareEmoji,
		},
	}
}
