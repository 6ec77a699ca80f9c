package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("FOURSQUARE_API_KEY", "fsq")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.UseWebhook {
		t.Error("webhook should default off")
	}
	if cfg.Places.SubmitLive {
		t.Error("submissions should default to dry run")
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Log.Level != "INFO" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("FOURSQUARE_API_KEY", "fsq")
	if _, err := Load(); err == nil {
		t.Error("expected error without bot token")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without gemini key")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("USE_WEBHOOK", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PLACES_SUBMIT_LIVE", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.HTTP.UseWebhook {
		t.Error("USE_WEBHOOK not honored")
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("level = %q, want upper-cased", cfg.Log.Level)
	}
	if !cfg.Places.SubmitLive {
		t.Error("PLACES_SUBMIT_LIVE not honored")
	}
}
