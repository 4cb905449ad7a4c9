package usecase

import (
	"strconv"
	"strings"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

// PromptConfig contains prompt and summary formatting configuration
type PromptConfig struct {
	Template      string // Summarisation prompt (supports {{messages}})
	Title         string // Summary title (supports {{count}})
	FooterPrivate string // Footer when the summary is delivered privately (supports {{provider}}, {{user}})
	FooterPublic  string // Footer when the summary is posted directly (supports {{provider}})
	NoMessages    string // Reply when the channel has no messages
	BotsOnly      string // Reply when every retrieved message is automated (supports {{bots}})
}

// DefaultPromptConfig contains default prompt configuration
var DefaultPromptConfig = PromptConfig{
	Template: `Please provide a concise summary of the following Discord chat conversation. Focus on the main topics discussed, key points made, and any important decisions or conclusions reached:

{{messages}}

Summary:`,
	Title:         "📝 Chat Summary ({{count}} messages)",
	FooterPrivate: "Powered by {{provider}} • Summarised by {{user}}",
	FooterPublic:  "Powered by {{provider}}",
	NoMessages:    "No messages found in this channel.",
	BotsOnly:      "No user messages found to summarise. Found {{bots}} bot messages.",
}

// BuildPrompt embeds the chronological transcript into the prompt template
func (c PromptConfig) BuildPrompt(t domain.Transcript) string {
	return strings.ReplaceAll(c.Template, "{{messages}}", t.Text())
}

// FormatTitle formats the summary title for count summarised messages
func (c PromptConfig) FormatTitle(count int) string {
	return strings.ReplaceAll(c.Title, "{{count}}", strconv.Itoa(count))
}

// FormatFooter formats the attribution footer. An empty user selects the public footer.
func (c PromptConfig) FormatFooter(provider, user string) string {
	if user == "" {
		return strings.ReplaceAll(c.FooterPublic, "{{provider}}", provider)
	}
	result := strings.ReplaceAll(c.FooterPrivate, "{{provider}}", provider)
	return strings.ReplaceAll(result, "{{user}}", user)
}

// FormatBotsOnly formats the bot-only notice
func (c PromptConfig) FormatBotsOnly(bots int) string {
	return strings.ReplaceAll(c.BotsOnly, "{{bots}}", strconv.Itoa(bots))
}
