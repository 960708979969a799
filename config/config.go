package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Browser   BrowserConfig
	Pipeline  PipelineConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// AppConfig is the service identity reported by /api/info and /health.
type AppConfig struct {
	Name        string // default: "JW Player Video Extractor"
	Version     string // default: "2.0.0"
	Environment string // default: "development"
}

// IsProduction reports whether error details must be hidden from clients.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // gin mode: "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the per-session headless browser.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// ExtraArgs are operator-supplied launch flags ("--name=value"),
	// appended to the fixed baseline set.
	ExtraArgs []string

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy server passed to the browser.
	Proxy string

	// Stealth applies go-rod/stealth evasions to each page.
	Stealth bool // default: false

	// MaxSessions bounds concurrent browser sessions.
	MaxSessions int // default: 4

	// UserAgent is the desktop user agent set on every page.
	UserAgent string
}

// PipelineConfig controls the extraction pipeline timings.
type PipelineConfig struct {
	// NavigationTimeout bounds navigation plus the network-idle wait.
	NavigationTimeout time.Duration // default: 30s

	// InitialDwell is the wait after navigation, before the diagnostic read.
	InitialDwell time.Duration // default: 5s

	// SettleDwell is the wait after the diagnostic read, before inspection.
	SettleDwell time.Duration // default: 3s

	// InspectTimeout bounds the in-page evaluation.
	InspectTimeout time.Duration // default: 15s

	// ScanExternalScripts fetches external script text for the
	// script-literal strategy.
	ScanExternalScripts bool // default: false

	// MaxExternalScripts caps how many external scripts are fetched.
	MaxExternalScripts int // default: 8

	// HTTPTimeout is the deadline for browserless fetches.
	HTTPTimeout time.Duration // default: 10s
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is the desktop browser identity presented to target sites.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is read first; it never overrides
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Name:        envOr("JWX_APP_NAME", "JW Player Video Extractor"),
			Version:     envOr("JWX_APP_VERSION", "2.0.0"),
			Environment: envFirstOr([]string{"JWX_ENV", "NODE_ENV"}, "development"),
		},
		Server: ServerConfig{
			Host: envOr("JWX_HOST", "0.0.0.0"),
			Port: envIntFirstOr([]string{"JWX_PORT", "PORT"}, 3000),
			Mode: envOr("JWX_GIN_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("JWX_HEADLESS", true),
			ExtraArgs:   splitList(envFirstOr([]string{"JWX_BROWSER_ARGS", "PUPPETEER_ARGS"}, "")),
			BrowserBin:  os.Getenv("JWX_BROWSER_BIN"),
			Proxy:       os.Getenv("JWX_PROXY"),
			Stealth:     envBoolOr("JWX_STEALTH", false),
			MaxSessions: envIntOr("JWX_MAX_SESSIONS", 4),
			UserAgent:   envOr("JWX_USER_AGENT", DefaultUserAgent),
		},
		Pipeline: PipelineConfig{
			NavigationTimeout:   envDurationOr("JWX_NAV_TIMEOUT", 30*time.Second),
			InitialDwell:        envDurationOr("JWX_DWELL_INITIAL", 5*time.Second),
			SettleDwell:         envDurationOr("JWX_DWELL_SETTLE", 3*time.Second),
			InspectTimeout:      envDurationOr("JWX_INSPECT_TIMEOUT", 15*time.Second),
			ScanExternalScripts: envBoolOr("JWX_SCAN_EXTERNAL_SCRIPTS", false),
			MaxExternalScripts:  envIntOr("JWX_MAX_EXTERNAL_SCRIPTS", 8),
			HTTPTimeout:         envDurationOr("JWX_HTTP_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("JWX_AUTH_ENABLED", false),
			APIKeys: envSliceOr("JWX_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("JWX_RATE_RPS", 2.0),
			Burst:             envIntOr("JWX_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("JWX_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("JWX_LOG_LEVEL", "info"),
			Format: envOr("JWX_LOG_FORMAT", "json"),
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

// envFirstOr returns the first non-empty variable among keys.
func envFirstOr(keys []string, fallback string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
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

func envIntFirstOr(keys []string, fallback int) int {
	if v := envFirstOr(keys, ""); v != "" {
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
		return splitList(v)
	}
	return fallback
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
