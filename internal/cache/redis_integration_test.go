package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// TestIsRateLimitedIntegration runs against a real Redis when REDIS_ADDR is set.
func TestIsRateLimitedIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis integration test")
	}

	client, err := NewClient(addr, 2)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	user := fmt.Sprintf("test-%d", time.Now().UnixNano())
	defer client.rdb.Del(ctx, RateLimitKey(user))

	for i := 1; i <= 2; i++ {
		if client.IsRateLimited(ctx, user) {
			t.Fatalf("Attempt %d: expected to be allowed", i)
		}
	}
	if !client.IsRateLimited(ctx, user) {
		t.Error("Expected third attempt to be rate limited")
	}
}

func TestRateLimitKey(t *testing.T) {
	if got := RateLimitKey("42"); got != "ratelimit:wizard:42" {
		t.Errorf("Unexpected key '%s'", got)
	}
}
