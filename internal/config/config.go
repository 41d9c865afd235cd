// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot credentials,
// webhook server settings, cache backing, logging, and the outbound e621
// client limits.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the bot.
type Config struct {
	// Telegram
	BotToken    string // BOT_API_KEY
	BotUsername string // BOT_USERNAME (without the leading @)
	BotAdmin    int64  // BOT_ADMIN: user id granted the admin tier (0 = none)

	// Webhook server
	WebhookURL        string        // BOT_WEBHOOK: public URL registered with Telegram
	WebhookSecret     string        // BOT_SECRET: path segment guarding the endpoint
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Cache
	CacheDB        string        // SQLite path; empty selects the in-memory store
	SettingsTTL    time.Duration // per-chat settings cache lifetime
	UpdateDedupTTL time.Duration // webhook replay suppression window

	// e621
	E621Login      string        // E621_LOGIN: optional API credentials
	E621APIKey     string        // E621_API_KEY
	E621Timeout    time.Duration // posts.json request timeout
	ReverseTimeout time.Duration // iqdb_queries.json request timeout
	E621RPS        float64       // outbound request budget (API asks for <= 2/s)
	E621Burst      int

	// Webhook edge limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		BotToken:    getenv("BOT_API_KEY", ""),
		BotUsername: strings.TrimPrefix(getenv("BOT_USERNAME", ""), "@"),
		BotAdmin:    getint64("BOT_ADMIN", 0),

		WebhookURL:        getenv("BOT_WEBHOOK", ""),
		WebhookSecret:     getenv("BOT_SECRET", ""),
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		CacheDB:        getenv("CACHE_DB", ""),
		SettingsTTL:    getdur("SETTINGS_TTL", time.Hour),
		UpdateDedupTTL: getdur("UPDATE_DEDUP_TTL", 10*time.Minute),

		E621Login:      getenv("E621_LOGIN", ""),
		E621APIKey:     getenv("E621_API_KEY", ""),
		E621Timeout:    getdur("E621_TIMEOUT", 15*time.Second),
		ReverseTimeout: getdur("REVERSE_TIMEOUT", 30*time.Second),
		E621RPS:        getfloat("E621_RPS", 2.0),
		E621Burst:      getint("E621_BURST", 2),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	if strings.TrimSpace(cfg.BotToken) == "" {
		return cfg, errors.New("BOT_API_KEY must not be empty")
	}
	if strings.TrimSpace(cfg.BotUsername) == "" {
		return cfg, errors.New("BOT_USERNAME must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.SettingsTTL <= 0 {
		return cfg, errors.New("SETTINGS_TTL must be > 0")
	}
	if cfg.UpdateDedupTTL <= 0 {
		return cfg, errors.New("UPDATE_DEDUP_TTL must be > 0")
	}
	if cfg.E621Timeout <= 0 || cfg.ReverseTimeout <= 0 {
		return cfg, errors.New("E621_TIMEOUT and REVERSE_TIMEOUT must be > 0")
	}
	if cfg.E621RPS <= 0 {
		return cfg, errors.New("E621_RPS must be > 0")
	}
	if cfg.E621Burst < 1 {
		return cfg, errors.New("E621_BURST must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if (cfg.E621Login == "") != (cfg.E621APIKey == "") {
		return cfg, errors.New("E621_LOGIN and E621_API_KEY must be set together")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
