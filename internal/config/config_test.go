package config

import (
	"testing"
	"time"
)

func TestLoadCacheConfigOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL_MENU_ITEMS", "2m")
	t.Setenv("CACHE_TTL_CALLS", "not-a-duration")

	cfg := LoadCacheConfig()
	if got := cfg.For("menu-items"); got != 2*time.Minute {
		t.Errorf("expected menu-items window 2m, got %s", got)
	}
	if got := cfg.For("calls"); got != time.Minute {
		t.Errorf("expected calls window to fall back to 1m, got %s", got)
	}
	if got := cfg.For("unknown"); got != 5*time.Minute {
		t.Errorf("expected default window 5m, got %s", got)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("expected capacity clamped to 1, got %d", cfg.Capacity)
	}
	if cfg.TTL != 50*time.Second {
		t.Errorf("expected ttl raised to 5 refill intervals, got %s", cfg.TTL)
	}
}

func TestNotifyConfigTelegramEnabled(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	if LoadNotifyConfig().TelegramEnabled() {
		t.Error("expected telegram disabled without chat id")
	}
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	cfg := LoadNotifyConfig()
	if !cfg.TelegramEnabled() || cfg.TelegramChatID != 42 {
		t.Errorf("expected telegram enabled for chat 42, got %+v", cfg)
	}
	if cfg.Duration != 5*time.Second {
		t.Errorf("expected default duration 5s, got %s", cfg.Duration)
	}
}

func TestTelemetryConfigFallbacks(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	cfg := LoadTelemetryConfig()
	if cfg.URL != "amqp://u:p@broker:5672/" {
		t.Errorf("expected AMQP_URL fallback, got %q", cfg.URL)
	}
	if cfg.Queue != "dashboard.errors" {
		t.Errorf("unexpected queue %q", cfg.Queue)
	}
}

func TestArchiveConfigDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("TELEMETRY_PREFETCH", "")
	cfg := LoadArchiveConfig()
	if cfg.Host != "localhost" || cfg.Port != "3307" || cfg.Name != "dashboard_telemetry" {
		t.Errorf("unexpected archive config %+v", cfg)
	}
	if cfg.Prefetch != 16 {
		t.Errorf("expected default prefetch 16, got %d", cfg.Prefetch)
	}
}
