// README: Entry point; loads config, wires the bot, stores and HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"placepilot/internal/ai"
	"placepilot/internal/config"
	"placepilot/internal/conversation"
	"placepilot/internal/geocode"
	"placepilot/internal/infra"
	"placepilot/internal/logging"
	"placepilot/internal/places"
	"placepilot/internal/telegram"
	"placepilot/internal/users"
	"placepilot/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Setup("placepilot", cfg.Log.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer provider.Close()

	placesClient := places.NewClient(cfg.Places.APIKey)

	// Sessions live in Redis when configured, in-process otherwise.
	var store conversation.Store
	var memStore *conversation.MemoryStore
	if cfg.Redis.Addr != "" {
		store = conversation.NewRedisStore(infra.NewRedis(cfg.Redis.Addr), cfg.Session.TTL)
	} else {
		memStore = conversation.NewMemoryStore(cfg.Session.TTL)
		store = memStore
	}

	svc := conversation.NewService(provider, placesClient, placesClient, store, logger).
		WithWebapp(cfg.Webapp.BaseURL).
		WithLiveSubmission(cfg.Places.SubmitLive)

	if cfg.Geocode.MapsKey != "" {
		geocoder, err := geocode.NewService(cfg.Geocode.MapsKey, logger)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		svc.WithGeocoder(geocoder)
	}

	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		userStore := users.NewStore(dbPool)
		if err := userStore.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
		svc.WithRecorder(userStore)
	}

	bot, err := telegram.New(cfg.TelegramToken, svc, logger)
	if err != nil {
		log.Fatal(err)
	}
	bot.WithTyping(true)
	logger.Info("bot authorized", "username", bot.Username())

	if memStore != nil {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			log.Fatal(err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(10*time.Minute),
			gocron.NewTask(func() {
				if removed := memStore.Sweep(); removed > 0 {
					logger.Info("swept expired sessions", "removed", removed)
				}
			}),
		)
		if err != nil {
			log.Fatal(err)
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
	}

	server := web.NewServer(logger)
	if cfg.HTTP.UseWebhook {
		server.EnableWebhook(cfg.HTTP.WebhookPath, bot)
		webhookURL := strings.TrimRight(cfg.Webapp.BaseURL, "/") + cfg.HTTP.WebhookPath
		if err := bot.SetWebhook(webhookURL); err != nil {
			log.Fatal(err)
		}
		logger.Info("webhook mode", "url", webhookURL)
	} else {
		if err := bot.DeleteWebhook(); err != nil {
			logger.Warn("delete webhook", "error", err)
		}
		go bot.Run(ctx)
		logger.Info("polling mode")
	}

	if err := server.Run(ctx, cfg.HTTP.Addr); err != nil {
		log.Fatal(err)
	}
	logger.Info("shutdown complete")
}
