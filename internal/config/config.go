// README: Config loader with env defaults for the bot, HTTP, stores and API keys.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string
	HTTP          struct {
		Addr        string
		UseWebhook  bool
		WebhookPath string
	}
	Webapp struct {
		BaseURL string
	}
	Redis struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	AI struct {
		GeminiKey string
	}
	Places struct {
		APIKey     string
		SubmitLive bool
	}
	Geocode struct {
		MapsKey string
	}
	Session struct {
		TTL time.Duration
	}
	Log struct {
		Env   string
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.TelegramToken == "" {
		return cfg, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	if cfg.AI.GeminiKey == "" {
		return cfg, errors.New("GEMINI_API_KEY is required")
	}
	cfg.Places.APIKey = os.Getenv("FOURSQUARE_API_KEY")
	if cfg.Places.APIKey == "" {
		return cfg, errors.New("FOURSQUARE_API_KEY is required")
	}
	cfg.Places.SubmitLive = envOrDefaultBool("PLACES_SUBMIT_LIVE", false)

	cfg.HTTP.Addr = envOrDefault("PLACEPILOT_HTTP_ADDR", ":8080")
	cfg.HTTP.UseWebhook = envOrDefaultBool("USE_WEBHOOK", false)
	cfg.HTTP.WebhookPath = envOrDefault("WEBHOOK_PATH", "/webhook")
	cfg.Webapp.BaseURL = envOrDefault("WEBAPP_BASE_URL", "http://localhost:8080")

	// Optional backing services. Empty means "run without".
	cfg.Redis.Addr = os.Getenv("PLACEPILOT_REDIS_ADDR")
	cfg.DB.DSN = os.Getenv("PLACEPILOT_DB_DSN")
	cfg.Geocode.MapsKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.Session.TTL = envOrDefaultDuration("SESSION_TTL", 24*time.Hour)
	cfg.Log.Env = envOrDefault("APP_ENV", "dev")
	cfg.Log.Level = strings.ToUpper(envOrDefault("LOG_LEVEL", "INFO"))
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
