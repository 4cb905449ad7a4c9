package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/channel-summariser/internal/biz"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/conf"
	"github.com/DevRickLin/channel-summariser/internal/data"
	"github.com/DevRickLin/channel-summariser/internal/infra/discord"
	"github.com/DevRickLin/channel-summariser/internal/infra/feishu"
	"github.com/DevRickLin/channel-summariser/internal/infra/llm"
	"github.com/DevRickLin/channel-summariser/internal/server"
	"github.com/DevRickLin/channel-summariser/internal/service"
)

// platformServer is a running chat platform connection
type platformServer interface {
	Start(ctx context.Context) error
	Stop()
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize summarizer
	llmClient, err := llm.NewClient(ctx, cfg.Summarizer.LLMOptions())
	if err != nil {
		log.Fatalf("Failed to create summarizer: %v", err)
	}
	defer llmClient.Close()
	fmt.Printf("[Main] Summarizer: %s\n", llmClient.DisplayName())

	// Initialize platform client and channel repository
	var (
		channelRepo repo.ChannelRepo
		discordCli  *discord.Client
		feishuCli   *feishu.Client
	)
	switch cfg.Platform {
	case conf.PlatformDiscord:
		discordCli, err = discord.NewClient(cfg.Discord.Token, cfg.Discord.GuildID)
		if err != nil {
			log.Fatalf("Failed to create Discord client: %v", err)
		}
		channelRepo = data.NewDiscordRepo(discordCli.Session())
	case conf.PlatformFeishu:
		feishuCli = feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		channelRepo = data.NewFeishuRepo(feishuCli)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(channelRepo, data.NewSummarizerRepo(llmClient, cfg.Summarizer.Timeout()), cfg.Audit.DBPath)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()
	if repos.Audit != nil {
		fmt.Printf("[Main] Audit DB: %s\n", cfg.Audit.DBPath)
	}

	// Initialize usecase layer
	ucs := biz.NewUsecases(repos.Channel, repos.Summarizer, cfg.ToPromptConfig(), cfg.Delivery.ShareTimeout())
	defer ucs.Stop()

	// Initialize service layer
	svc := service.NewSummariseService(
		ucs.Summarise,
		ucs.Share,
		repos.Channel,
		repos.Audit,
		cfg.ToMessages(),
		cfg.Platform,
		cfg.Delivery.DeliveryMode(),
	)

	// Initialize server
	var srv platformServer
	if discordCli != nil {
		srv = server.NewDiscordServer(discordCli, svc)
	} else {
		srv = server.NewFeishuServer(feishuCli, svc)
	}

	// Discord returns once connected; Feishu blocks while the socket is up
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	fmt.Printf("Starting channel summariser on %s (%s delivery)...\n", cfg.Platform, cfg.Delivery.Mode)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("Server error: %v", err)
			}
			errCh = nil
		case <-sigCh:
			fmt.Println("\nShutting down...")
			cancel()
			srv.Stop()
			return
		}
	}
}
