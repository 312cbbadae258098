// Package config provides configuration for the chat service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the chat service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// LLM settings
	GeminiAPIKey       string
	GeminiModel        string
	MaxTokens          int
	Temperature        float64
	RateLimitPerMinute int
	CacheCapacity      int
	CacheTTL           time.Duration

	// Session lifecycle
	SessionTimeout  time.Duration
	WarningTimeout  time.Duration
	CleanupInterval time.Duration

	// Notifications
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	TeamEmail         string
	SlackWebhookURL   string
	DiscordWebhookURL string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8000),
		DatabaseURL:        getEnv("DATABASE_URL", "file:leads.db?cache=shared&mode=rwc"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MaxTokens:          getEnvInt("GEMINI_MAX_TOKENS", 1500),
		Temperature:        getEnvFloat("GEMINI_TEMPERATURE", 0.25),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CacheCapacity:      getEnvInt("CACHE_CAPACITY", 500),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL_HOURS", 12)) * time.Hour,
		SessionTimeout:     time.Duration(getEnvInt("SESSION_TIMEOUT_MIN", 15)) * time.Minute,
		WarningTimeout:     time.Duration(getEnvInt("WARNING_TIMEOUT_MIN", 10)) * time.Minute,
		CleanupInterval:    time.Duration(getEnvInt("CLEANUP_INTERVAL_MIN", 5)) * time.Minute,
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		TeamEmail:          getEnv("TEAM_EMAIL", ""),
		SlackWebhookURL:    getEnv("SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL:  getEnv("DISCORD_WEBHOOK_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
