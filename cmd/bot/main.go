package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/coingecko"
	"github.com/insightlabs/naomi/internal/adapters/config"
	"github.com/insightlabs/naomi/internal/adapters/grok"
	"github.com/insightlabs/naomi/internal/adapters/nansen"
	redisadapter "github.com/insightlabs/naomi/internal/adapters/redis"
	"github.com/insightlabs/naomi/internal/adapters/telegram"
	"github.com/insightlabs/naomi/internal/adapters/twitter"
	"github.com/insightlabs/naomi/internal/flow"
	"github.com/insightlabs/naomi/internal/market"
	"github.com/insightlabs/naomi/internal/orchestrator"
	"github.com/insightlabs/naomi/internal/resolver"
	"github.com/insightlabs/naomi/internal/social"
	"github.com/insightlabs/naomi/pkg/logger"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Naomi crypto assistant starting (Telegram mode)...")

	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required for telegram mode")
	}

	assistant, cleanup, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	bot, err := telegram.NewBot(&cfg.Telegram, assistant, cfg.Assistant.HistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if err := bot.Start(ctx); err != nil && err != context.Canceled {
		return err
	}

	logger.Info("shutting down gracefully...")
	return nil
}

// buildAssistant wires the turn pipeline from configuration.
func buildAssistant(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, func(), error) {
	gecko := coingecko.NewClient(cfg.CoinGecko.APIKey)

	coins := resolver.New(gecko)
	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		cache, err := redisadapter.NewCache(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory resolution cache", zap.Error(err))
		} else {
			coins = coins.WithCache(cache)
			cleanup = func() { cache.Close() }
		}
	}

	assistant := orchestrator.New(
		coins,
		market.NewFetcher(gecko),
		flow.NewFetcher(nansen.NewClient(cfg.Nansen.APIKey)),
		social.NewFetcher(twitter.NewClient(cfg.Twitter.BearerToken), cfg.Assistant.SentimentSampleSize),
		grok.NewClient(cfg.Grok.APIKey, cfg.Grok.Model, cfg.Grok.MaxTokens, cfg.Grok.Temperature),
	)

	logger.Info("assistant pipeline wired",
		zap.Bool("nansen", cfg.Nansen.APIKey != ""),
		zap.Bool("twitter", cfg.Twitter.BearerToken != ""),
		zap.Bool("grok", cfg.Grok.APIKey != ""),
		zap.Bool("redis_cache", cfg.Redis.Addr != ""),
	)

	return assistant, cleanup, nil
}
