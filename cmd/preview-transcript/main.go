package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/conf"
	"github.com/DevRickLin/channel-summariser/internal/data"
	"github.com/DevRickLin/channel-summariser/internal/infra/discord"
	"github.com/DevRickLin/channel-summariser/internal/infra/feishu"
)

// preview-transcript prints the prompt a summarise invocation would send,
// without calling the summarizer or posting anything.
func main() {
	count := flag.Int("n", domain.DefaultMessageCount, "number of messages to read")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: preview-transcript [-n count] <channel_id>")
		os.Exit(1)
	}
	channelID := flag.Arg(0)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := conf.LoadFromEnv()

	var channelRepo repo.ChannelRepo
	switch cfg.Platform {
	case conf.PlatformDiscord:
		discordCli, err := discord.NewClient(cfg.Discord.Token, "")
		if err != nil {
			log.Fatalf("Failed to create Discord client: %v", err)
		}
		channelRepo = data.NewDiscordRepo(discordCli.Session())
	case conf.PlatformFeishu:
		channelRepo = data.NewFeishuRepo(feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret))
	default:
		log.Fatalf("Unknown platform %q", cfg.Platform)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	limit := domain.ClampCount(*count)
	msgs, err := channelRepo.FetchRecentMessages(ctx, channelID, limit)
	if err != nil {
		log.Fatalf("Failed to fetch messages: %v", err)
	}

	transcript := domain.BuildTranscript(msgs)
	fmt.Printf("=== %d messages read (limit %d), %d from users, %d from bots ===\n\n",
		transcript.Total(), limit, transcript.Len(), transcript.BotCount)

	if transcript.IsEmpty() {
		fmt.Println("Nothing to summarise.")
		return
	}
	fmt.Println(cfg.ToPromptConfig().BuildPrompt(transcript))
}
