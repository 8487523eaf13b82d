package config

import (
	"os"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("DIET_API_URL", "http://diet.test/")
		setEnv("DIET_API_TIMEOUT", "5s")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "10, 20")
		setEnv("ADMIN_TELEGRAM_ID", "10")
		setEnv("DATABASE_PATH", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DietAPIURL != "http://diet.test" {
			t.Errorf("Expected DietAPIURL to be 'http://diet.test', got '%s'", cfg.DietAPIURL)
		}
		if cfg.DietAPITimeout != 5*time.Second {
			t.Errorf("Expected DietAPITimeout to be 5s, got %v", cfg.DietAPITimeout)
		}
		if cfg.DatabasePath != "data/diet-wizard.db" {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if cfg.RateLimitPerMinute != 10 {
			t.Errorf("Expected default RateLimitPerMinute 10, got %d", cfg.RateLimitPerMinute)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 20 {
			t.Errorf("Expected allowed ids [10 20], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.ConversationTTL != 24*time.Hour {
			t.Errorf("Expected default ConversationTTL 24h, got %v", cfg.ConversationTTL)
		}
		if err := cfg.RequireDietAPI(); err != nil {
			t.Errorf("Expected diet API settings to be valid, got %v", err)
		}
		if cfg.AdminTelegramID != 10 {
			t.Errorf("Expected AdminTelegramID 10, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("MissingDietAPIURL", func(t *testing.T) {
		setEnv("DIET_API_URL", "")
		os.Unsetenv("DIET_API_URL")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected config without DIET_API_URL to load, got %v", err)
		}
		err = cfg.RequireDietAPI()
		if err == nil {
			t.Fatal("Expected an error for missing DIET_API_URL, got nil")
		}
		expectedError := "DIET_API_URL environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidTimeout", func(t *testing.T) {
		setEnv("DIET_API_URL", "http://diet.test")
		setEnv("DIET_API_TIMEOUT", "soon")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid DIET_API_TIMEOUT, got nil")
		}
	})

	t.Run("InvalidAllowList", func(t *testing.T) {
		setEnv("DIET_API_URL", "http://diet.test")
		setEnv("DIET_API_TIMEOUT", "")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "10,abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid TELEGRAM_ALLOWED_USER_IDS, got nil")
		}
	})
}

func TestIsAllowed(t *testing.T) {
	open := &Config{}
	if !open.IsAllowed(42) {
		t.Error("Expected empty allow-list to admit everyone")
	}

	restricted := &Config{TelegramAllowedUserIDs: []int64{1, 2}}
	if !restricted.IsAllowed(2) {
		t.Error("Expected user 2 to be allowed")
	}
	if restricted.IsAllowed(3) {
		t.Error("Expected user 3 to be rejected")
	}
}
