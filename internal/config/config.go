package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
	DefaultLanguage string

	// Operator notifications (optional; disabled when the token is empty).
	OpsBotToken string
	OpsChatID   int64

	// Expiration pipeline knobs. All adjustable via environment so tests
	// and deployments never depend on hard-coded constants.
	ExpirationCooldown        time.Duration
	ExpirationWatchdogTimeout time.Duration
	ExpirationInitialDelay    time.Duration
	ExpirationInterval        time.Duration
	AdminPollInterval         time.Duration
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	opsChatIDStr := getEnv("OPS_CHAT_ID", "")
	var opsChatID int64
	if opsChatIDStr != "" {
		var err error
		opsChatID, err = strconv.ParseInt(opsChatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPS_CHAT_ID: %w", err)
		}
	}

	cooldown, err := getDurationEnv("EXPIRATION_COOLDOWN", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	watchdog, err := getDurationEnv("EXPIRATION_WATCHDOG_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	initialDelay, err := getDurationEnv("EXPIRATION_INITIAL_DELAY", 10*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := getDurationEnv("EXPIRATION_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	adminPoll, err := getDurationEnv("ADMIN_POLL_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MongoDBURI:      getEnv("MONGODB_URI", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		OpsBotToken: getEnv("OPS_BOT_TOKEN", ""),
		OpsChatID:   opsChatID,

		ExpirationCooldown:        cooldown,
		ExpirationWatchdogTimeout: watchdog,
		ExpirationInitialDelay:    initialDelay,
		ExpirationInterval:        interval,
		AdminPollInterval:         adminPoll,
	}

	// Basic validation for essential variables
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.MongoDBDatabase == "" {
		return nil, fmt.Errorf("MONGODB_DATABASE is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if cfg.OpsBotToken == "" {
		log.Println("Warning: OPS_BOT_TOKEN is not set. Operator notifications disabled.")
	} else if cfg.OpsChatID == 0 {
		return nil, fmt.Errorf("OPS_CHAT_ID is required when OPS_BOT_TOKEN is set")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDurationEnv parses a duration environment variable. An unset variable
// falls back to the default; an unparseable one is a configuration error.
func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
