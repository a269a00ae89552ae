package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Scraper.TargetURL != "https://yaps.kaito.ai/yapper-leaderboards" {
		t.Errorf("default target = %q", cfg.Scraper.TargetURL)
	}
	if cfg.Scraper.NavigationTimeout != 45*time.Second {
		t.Errorf("default navigation timeout = %v", cfg.Scraper.NavigationTimeout)
	}
	if cfg.Scraper.CacheTTL != 30*time.Minute {
		t.Errorf("default cache TTL = %v", cfg.Scraper.CacheTTL)
	}
	if cfg.Challenge.MaxRounds != 3 {
		t.Errorf("default challenge rounds = %d", cfg.Challenge.MaxRounds)
	}
	if cfg.Scheduler.IntervalMinutes != 30 {
		t.Errorf("default scrape interval = %d", cfg.Scheduler.IntervalMinutes)
	}
	if !cfg.Browser.Headless {
		t.Error("browser should default to headless")
	}
	if cfg.Auth.Enabled {
		t.Error("auth should default to disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PODIUM_PORT", "9090")
	t.Setenv("PODIUM_TARGET_URL", "https://example.test/board")
	t.Setenv("PODIUM_NAV_TIMEOUT", "10s")
	t.Setenv("PODIUM_HEADLESS", "false")
	t.Setenv("PODIUM_API_KEYS", "key-a, key-b,, key-c")
	t.Setenv("PODIUM_RATE_RPS", "2.5")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Scraper.TargetURL != "https://example.test/board" {
		t.Errorf("target = %q", cfg.Scraper.TargetURL)
	}
	if cfg.Scraper.NavigationTimeout != 10*time.Second {
		t.Errorf("navigation timeout = %v", cfg.Scraper.NavigationTimeout)
	}
	if cfg.Browser.Headless {
		t.Error("headless override ignored")
	}
	if len(cfg.Auth.APIKeys) != 3 || cfg.Auth.APIKeys[1] != "key-b" {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("rate rps = %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("PODIUM_PORT", "not-a-number")
	t.Setenv("PODIUM_NAV_TIMEOUT", "soon")
	t.Setenv("PODIUM_HEADLESS", "maybe")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default on bad input", cfg.Server.Port)
	}
	if cfg.Scraper.NavigationTimeout != 45*time.Second {
		t.Errorf("navigation timeout = %v, want default", cfg.Scraper.NavigationTimeout)
	}
	if !cfg.Browser.Headless {
		t.Error("headless should keep default on bad input")
	}
}
