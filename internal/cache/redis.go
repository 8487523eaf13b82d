package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client wraps Redis for per-user rate limiting.
type Client struct {
	rdb         *redis.Client
	maxRequests int
	window      time.Duration
}

// NewClient connects to Redis and allows maxRequests per minute per key.
func NewClient(addr string, maxRequests int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Client{rdb: rdb, maxRequests: maxRequests, window: time.Minute}, nil
}

// RateLimitKey is the Redis key counting a user's new wizard sessions.
func RateLimitKey(userID string) string {
	return fmt.Sprintf("ratelimit:wizard:%s", userID)
}

// IsRateLimited counts one attempt for the user and reports whether the
// window's budget is exhausted. Redis errors fail open.
func (c *Client) IsRateLimited(ctx context.Context, userID string) bool {
	key := RateLimitKey(userID)

	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Warning: rate limit check failed for %s: %v", userID, err)
		return false
	}

	return incr.Val() > int64(c.maxRequests)
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
