package main

import (
	"contentbot/config"
	"contentbot/internal/ai"
	"contentbot/internal/bot"
	"contentbot/internal/health"
	"contentbot/internal/images"
	"contentbot/internal/localization"
	"contentbot/internal/lock"
	"contentbot/internal/polling"
	"contentbot/internal/scheduler"
	"contentbot/internal/seo"
	"contentbot/internal/shutdown"
	"contentbot/internal/stats"
	"contentbot/internal/storage"
	"contentbot/internal/trends"
	"contentbot/internal/users"
	"context"
	"embed"
	"fmt"
	"log"
	"os"
)

//go:embed locales
var localeFiles embed.FS

func main() {
	log.Println("Starting contentbot...")

	cfg := config.LoadConfig()

	locker := lock.New(cfg.LockName)
	if !locker.Acquire() {
		log.Println("Another instance is already running, exiting.")
		os.Exit(1)
	}

	coordinator := shutdown.NewCoordinator()
	coordinator.Register("instance lock", func() error {
		locker.Release()
		return nil
	})
	coordinator.RegisterSignals()

	err := run(cfg, coordinator)
	coordinator.Shutdown()
	<-coordinator.Done()
	if err != nil {
		log.Fatalf("contentbot: %v", err)
	}
	log.Println("Shutdown complete.")
}

func run(cfg config.Config, coordinator *shutdown.Coordinator) error {
	store, err := storage.NewStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	coordinator.Register("database", func() error {
		store.Close()
		return nil
	})

	userManager := users.NewManager(store)
	if err := userManager.EnsureAdmins(cfg.AdminUserIDs); err != nil {
		return fmt.Errorf("failed to seed admin users: %w", err)
	}

	tracker := stats.NewTracker(cfg.StatsPath)
	localizer := localization.NewLocalizer(localeFiles, cfg.BotLanguage)

	generator, closeGenerator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	if closeGenerator != nil {
		coordinator.Register("gemini client", closeGenerator)
	}

	appScheduler, err := scheduler.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	coordinator.Register("scheduler", appScheduler.Stop)

	var trendSource *trends.Source
	if len(cfg.TrendFeeds) > 0 {
		trendSource = trends.NewSource(cfg.TrendFeeds)
	}

	telegramBot, err := bot.NewBot(bot.Deps{
		Config:    &cfg,
		Localizer: localizer,
		Generator: generator,
		Images:    buildImageFetcher(cfg, store),
		SEO:       seo.NewClient(store, cfg.APITimeout),
		Trends:    trendSource,
		Users:     userManager,
		Stats:     tracker,
		Storage:   store,
		Scheduler: appScheduler,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	telegramBot.ScheduleJobs()
	appScheduler.Start()

	if cfg.HealthAddr != "" {
		healthServer := health.NewServer(cfg.HealthAddr, tracker, cfg.AutopostInterval(), cfg.AutopostEnabled())
		healthServer.Start()
		coordinator.Register("health server", healthServer.Close)
	}

	pollCtx, cancelPolling := context.WithCancel(context.Background())
	defer cancelPolling()
	coordinator.Register("polling", func() error {
		cancelPolling()
		return nil
	})
	// Backstop for a shutdown that raced the registration above.
	go func() {
		<-coordinator.Done()
		cancelPolling()
	}()

	driver := polling.New(polling.Options{})
	log.Println("Bot is running...")
	return driver.Run(pollCtx, telegramBot.Poll, nil)
}

// buildGenerator wires the Perplexity client and, when a Gemini key is
// configured, chains Gemini behind it as a fallback. The returned
// closer is non-nil only when the Gemini client was created.
func buildGenerator(cfg config.Config) (ai.Generator, func() error, error) {
	perplexity := ai.NewPerplexity(cfg.PerplexityAPIKey, cfg.APIModel, cfg.MaxTokens, cfg.Temperature, cfg.APITimeout)
	if cfg.GeminiAPIKey == "" {
		return perplexity, nil, nil
	}
	gemini, err := ai.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("Failed to initialize Gemini fallback, continuing with Perplexity only: %v", err)
		return perplexity, nil, nil
	}
	return ai.NewChain(perplexity, gemini), gemini.Close, nil
}

func buildImageFetcher(cfg config.Config, store *storage.Storage) images.Fetcher {
	var providers []images.Fetcher
	if cfg.PexelsAPIKey != "" {
		providers = append(providers, images.NewPexels(cfg.PexelsAPIKey, cfg.APITimeout))
	}
	if cfg.PixabayAPIKey != "" {
		providers = append(providers, images.NewPixabay(cfg.PixabayAPIKey, cfg.APITimeout))
	}
	switch len(providers) {
	case 0:
		log.Println("No image API keys configured, posts will be text only.")
		return nil
	case 1:
		return images.NewCached(providers[0], store, images.DefaultCacheTTL)
	default:
		return images.NewCached(images.NewFallback(providers[0], providers[1]), store, images.DefaultCacheTTL)
	}
}
