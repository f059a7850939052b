package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected longpoll default", cfg.Telegram.RunMode)
	}
	if cfg.Notifier.TickMinutes != 60 {
		t.Fatalf("tick_minutes = %d, expected 60 default", cfg.Notifier.TickMinutes)
	}
	if cfg.Notifier.Timezone != "Europe/Moscow" {
		t.Fatalf("timezone = %q, expected Europe/Moscow default", cfg.Notifier.Timezone)
	}
	if cfg.Catalog.Endpoint == "" || cfg.Catalog.PageLimit <= 0 {
		t.Fatalf("catalog defaults missing: %+v", cfg.Catalog)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeRejectsLongTick(t *testing.T) {
	cfg := validConfig()
	cfg.Notifier.TickMinutes = 120
	err := Normalize(cfg)
	if err == nil {
		t.Fatal("expected error for tick above window width")
	}
	if !strings.Contains(err.Error(), "tick_minutes") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("alias not normalized: %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}
}

func TestNormalizeBadTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Notifier.Timezone = "Mars/Olympus"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
