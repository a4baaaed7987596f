package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// newUnreachableManager points at a closed local port so every call fails fast.
func newUnreachableManager(t *testing.T) *Manager {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return NewManager(client, time.Minute)
}

func TestGetCategories_RedisDownIsMiss(t *testing.T) {
	m := newUnreachableManager(t)

	categories, ok := m.GetCategories(context.Background())
	if ok {
		t.Errorf("GetCategories() ok = true with redis down, got %v", categories)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	m := newUnreachableManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.SetCategories(ctx, map[string]string{"1": "Science"})
	}

	if state := m.breaker.State(); state != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", state)
	}

	_, err := m.RateLimit(ctx, "203.0.113.7", 10, time.Minute)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("RateLimit() error = %v, want ErrOpenState", err)
	}
}

func TestRateLimit_RedisDownReturnsError(t *testing.T) {
	m := newUnreachableManager(t)

	limited, err := m.RateLimit(context.Background(), "203.0.113.8", 10, time.Minute)
	if err == nil {
		t.Fatal("RateLimit() error = nil with redis down")
	}
	if limited {
		t.Error("RateLimit() limited = true on error")
	}
}
