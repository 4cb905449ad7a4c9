package data

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

func TestConvertDiscordMessages(t *testing.T) {
	msgs := []*discordgo.Message{
		{ID: "3", Content: "hi", Author: &discordgo.User{ID: "u1", Username: "alice", GlobalName: "Alice"}},
		{ID: "2", Content: "beep", Author: &discordgo.User{ID: "b1", Username: "helper", Bot: true}},
		{ID: "1", Content: "hook", WebhookID: "w1", Author: &discordgo.User{ID: "w1", Username: "GitHub"}},
		{ID: "0", Content: "yo", Author: &discordgo.User{ID: "u2", Username: "bob"}, Member: &discordgo.Member{Nick: "Bobby"}},
	}

	got := ConvertDiscordMessages(msgs)
	if len(got) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(got))
	}
	if got[0].AuthorName != "Alice" || got[0].IsBot {
		t.Errorf("Unexpected first message: %+v", got[0])
	}
	if !got[1].IsBot {
		t.Error("Expected bot author to be automated")
	}
	if !got[2].IsBot {
		t.Error("Expected webhook message to be automated")
	}
	if got[3].AuthorName != "Bobby" {
		t.Errorf("Expected nickname, got %s", got[3].AuthorName)
	}
}

func TestDiscordEmbed(t *testing.T) {
	s := &domain.Summary{Title: "t", Body: strings.Repeat("é", 5000), Footer: "f", Color: domain.SummaryColor}
	embed := DiscordEmbed(s)

	if n := utf8.RuneCountInString(embed.Description); n != discordEmbedDescMax {
		t.Errorf("Expected description truncated to %d runes, got %d", discordEmbedDescMax, n)
	}
	if embed.Color != 0x00ff00 {
		t.Errorf("Expected green, got %x", embed.Color)
	}
	if embed.Footer == nil || embed.Footer.Text != "f" {
		t.Errorf("Unexpected footer: %+v", embed.Footer)
	}
}

func TestDiscordComponents(t *testing.T) {
	comps := DiscordComponents(&domain.ShareButton{ID: "abc", Label: "Share to Channel", Emoji: "📤", Disabled: true})
	if len(comps) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(comps))
	}
	row, ok := comps[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 1 {
		t.Fatalf("Expected action row with one button, got %#v", comps[0])
	}
	button, ok := row.Components[0].(discordgo.Button)
	if !ok {
		t.Fatalf("Expected button, got %#v", row.Components[0])
	}
	if button.CustomID != "summarise:share:abc" || !button.Disabled || button.Label != "Share to Channel" {
		t.Errorf("Unexpected button: %+v", button)
	}

	if len(DiscordComponents(nil)) != 0 {
		t.Error("Expected no components without a share button")
	}
}

func TestParseShareCustomID(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"summarise:share:abc", "abc", true},
		{"summarise:share:", "", false},
		{"other:abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ParseShareCustomID(tt.in)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ParseShareCustomID(%q) = %q, %v; want %q, %v", tt.in, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestDiscordMessageSend_Text(t *testing.T) {
	send := DiscordMessageSend(domain.TextReply("No messages found in this channel."))
	if send.Content != "No messages found in this channel." || len(send.Embeds) != 0 {
		t.Errorf("Unexpected send: %+v", send)
	}
}
