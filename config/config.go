package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Challenge ChallengeConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
	Store     StoreConfig
	Snapshot  SnapshotConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the system Chrome binary tried by the first
	// launch strategy. Empty means use the per-OS default list.
	BrowserBin string

	// UserDataDir is the persistent profile directory used by the
	// system-browser launch strategy. Empty disables the profile.
	UserDataDir string

	// CookieFile is an optional JSON array of cookies seeded into every
	// new page. Missing file is not an error.
	CookieFile string // default: "cookies.json"

	// UserAgent is applied to every prepared page.
	UserAgent string
}

// ScraperConfig controls the scrape pipeline.
type ScraperConfig struct {
	// TargetURL is the leaderboard page to harvest.
	TargetURL string

	// NavigationTimeout is the max time for navigation to a usable state.
	NavigationTimeout time.Duration // default: 45s

	// SettleDelay is the base wait for client-rendered content after
	// navigation; randomized jitter of the same order is added on top.
	SettleDelay time.Duration // default: 3s

	// CacheTTL is how long scraped entries stay valid in the cache.
	CacheTTL time.Duration // default: 30m
}

// ChallengeConfig controls interstitial challenge resolution.
type ChallengeConfig struct {
	// MaxRounds bounds the click-and-recheck resolution loop.
	MaxRounds int // default: 3

	// SettleInterval is the wait between a click and the re-check.
	SettleInterval time.Duration // default: 4s
}

// SchedulerConfig controls the periodic scrape trigger.
type SchedulerConfig struct {
	IntervalMinutes int // default: 30
}

// CacheConfig controls the leaderboard entry cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached keys.
	MaxEntries int // default: 64
}

// StoreConfig controls the durable scrape-result store.
type StoreConfig struct {
	// Path is the sqlite database file. ":memory:" is allowed for tests.
	Path string // default: "podium.db"
}

// SnapshotConfig controls diagnostic page captures.
type SnapshotConfig struct {
	// Dir is where challenge/empty-result screenshots are written.
	// Empty disables snapshots.
	Dir string // default: "snapshots"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PODIUM_HOST", "0.0.0.0"),
			Port: envIntOr("PODIUM_PORT", 8080),
			Mode: envOr("PODIUM_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("PODIUM_HEADLESS", true),
			NoSandbox:   envBoolOr("PODIUM_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("PODIUM_BROWSER_BIN"),
			UserDataDir: os.Getenv("PODIUM_USER_DATA_DIR"),
			CookieFile:  envOr("PODIUM_COOKIE_FILE", "cookies.json"),
			UserAgent: envOr("PODIUM_USER_AGENT",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Scraper: ScraperConfig{
			TargetURL:         envOr("PODIUM_TARGET_URL", "https://yaps.kaito.ai/yapper-leaderboards"),
			NavigationTimeout: envDurationOr("PODIUM_NAV_TIMEOUT", 45*time.Second),
			SettleDelay:       envDurationOr("PODIUM_SETTLE_DELAY", 3*time.Second),
			CacheTTL:          envDurationOr("PODIUM_CACHE_TTL", 30*time.Minute),
		},
		Challenge: ChallengeConfig{
			MaxRounds:      envIntOr("PODIUM_CHALLENGE_ROUNDS", 3),
			SettleInterval: envDurationOr("PODIUM_CHALLENGE_SETTLE", 4*time.Second),
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: envIntOr("PODIUM_SCRAPE_INTERVAL_MINUTES", 30),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PODIUM_CACHE_MAX_ENTRIES", 64),
		},
		Store: StoreConfig{
			Path: envOr("PODIUM_DB_PATH", "podium.db"),
		},
		Snapshot: SnapshotConfig{
			Dir: envOr("PODIUM_SNAPSHOT_DIR", "snapshots"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PODIUM_AUTH_ENABLED", false),
			APIKeys: envSliceOr("PODIUM_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PODIUM_RATE_RPS", 5.0),
			Burst:             envIntOr("PODIUM_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("PODIUM_LOG_LEVEL", "info"),
			Format: envOr("PODIUM_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
