package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestCommands(t *testing.T) {
	cmds := Commands()
	if len(cmds) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(cmds))
	}
	cmd := cmds[0]
	if cmd.Name != "summarise" {
		t.Errorf("Expected summarise, got %s", cmd.Name)
	}
	if len(cmd.Options) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(cmd.Options))
	}
	opt := cmd.Options[0]
	if opt.Name != "messages" || opt.Type != discordgo.ApplicationCommandOptionInteger {
		t.Errorf("Unexpected option: %+v", opt)
	}
	if opt.Required {
		t.Error("messages option must be optional")
	}
	// Out-of-range values are clamped, not rejected by the platform
	if opt.MinValue != nil || opt.MaxValue != 0 {
		t.Error("messages option must not declare platform bounds")
	}
}
