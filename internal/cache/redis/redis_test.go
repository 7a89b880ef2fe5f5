package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/cache"
)

func TestPingUnreachable(t *testing.T) {
	c := New(cache.Options{RedisURL: "127.0.0.1:1"})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err == nil {
		t.Fatalf("Ping against a closed port should fail")
	}
}

func TestDefaultTTL(t *testing.T) {
	c := New(cache.Options{RedisURL: "127.0.0.1:1"})
	defer c.Close()
	if c.defaultTTL != cache.DefaultOptions().DefaultTTL {
		t.Fatalf("default ttl: got=%v want=%v", c.defaultTTL, cache.DefaultOptions().DefaultTTL)
	}
}

// TestRoundTrip needs a live server, e.g. REDIS_TEST_ADDR=localhost:6379.
func TestRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	c := New(cache.Options{RedisURL: addr, DefaultTTL: time.Minute})
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	key := fmt.Sprintf("job-board-test:%d", time.Now().UnixNano())
	if err := c.Set(ctx, key, "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got string
	if err := c.Get(ctx, key, &got); err != nil || got != "v" {
		t.Fatalf("Get: got=%q err=%v", got, err)
	}
	var n int
	if err := c.Get(ctx, key, &n); !errors.Is(err, cache.ErrInvalidValue) {
		t.Fatalf("Get(*int): got=%v want=%v", err, cache.ErrInvalidValue)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Get(ctx, key, &got); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("deleted key: got err=%v want=%v", err, cache.ErrNotFound)
	}
}
