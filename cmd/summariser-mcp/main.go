package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/biz/usecase"
	"github.com/DevRickLin/channel-summariser/internal/conf"
	"github.com/DevRickLin/channel-summariser/internal/data"
	"github.com/DevRickLin/channel-summariser/internal/infra/discord"
	"github.com/DevRickLin/channel-summariser/internal/infra/feishu"
	"github.com/DevRickLin/channel-summariser/internal/infra/llm"
	"github.com/DevRickLin/channel-summariser/internal/mcp"
)

const version = "v1.0.0"

// The MCP server speaks JSON-RPC on stdout, so every log line is moved to stderr
func main() {
	protocolOut := os.Stdout
	os.Stdout = os.Stderr
	log.SetOutput(os.Stderr)

	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	if err := cfg.ValidateSummarizer(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llmClient, err := llm.NewClient(ctx, cfg.Summarizer.LLMOptions())
	if err != nil {
		log.Fatalf("Failed to create summarizer: %v", err)
	}
	defer llmClient.Close()

	// REST access only, no gateway or websocket connection
	var channelRepo repo.ChannelRepo
	switch cfg.Platform {
	case conf.PlatformDiscord:
		if cfg.Discord.Token == "" {
			log.Fatalf("Invalid config: DISCORD_TOKEN: environment variable not found")
		}
		discordCli, err := discord.NewClient(cfg.Discord.Token, "")
		if err != nil {
			log.Fatalf("Failed to create Discord client: %v", err)
		}
		channelRepo = data.NewDiscordRepo(discordCli.Session())
	case conf.PlatformFeishu:
		if cfg.Feishu.AppID == "" || cfg.Feishu.AppSecret == "" {
			log.Fatalf("Invalid config: FEISHU_APP_ID/FEISHU_APP_SECRET: environment variable not found")
		}
		channelRepo = data.NewFeishuRepo(feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret))
	default:
		log.Fatalf("Invalid config: CHAT_PLATFORM: unknown platform %q", cfg.Platform)
	}

	repos, err := data.NewRepositories(channelRepo, data.NewSummarizerRepo(llmClient, cfg.Summarizer.Timeout()), cfg.Audit.DBPath)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	summariseUC := usecase.NewSummariseUsecase(repos.Channel, repos.Summarizer, cfg.ToPromptConfig())
	srv := mcp.NewServer(summariseUC, repos.Audit, cfg.Platform, version)

	if err := srv.Run(ctx, os.Stdin, protocolOut); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
