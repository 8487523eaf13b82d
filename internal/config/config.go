package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	DietAPIURL     string
	DietAPISecret  string
	DietAPITimeout time.Duration

	DatabasePath string

	// ConversationTTL is how long an idle chat keeps its wizard state.
	ConversationTTL time.Duration

	RedisAddr          string
	RateLimitPerMinute int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	Port string
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := durationEnv("DIET_API_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := durationEnv("CONVERSATION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	rateLimit := 10
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q: %w", raw, err)
		}
		rateLimit = n
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", raw, err)
		}
	}

	return &Config{
		DietAPIURL:             strings.TrimRight(os.Getenv("DIET_API_URL"), "/"),
		DietAPISecret:          os.Getenv("DIET_API_SECRET"),
		DietAPITimeout:         timeout,
		DatabasePath:           getEnv("DATABASE_PATH", "data/diet-wizard.db"),
		ConversationTTL:        ttl,
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RateLimitPerMinute:     rateLimit,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
		Port:                   getEnv("PORT", "8080"),
	}, nil
}

// RequireDietAPI checks the settings needed to call the diet service.
func (c *Config) RequireDietAPI() error {
	if c.DietAPIURL == "" {
		return fmt.Errorf("DIET_API_URL environment variable not set")
	}
	return nil
}

// IsAllowed reports whether a Telegram user may use the bot.
// An empty allow-list admits everyone.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
