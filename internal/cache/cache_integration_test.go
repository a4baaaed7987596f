//go:build integration

package cache

import (
	"context"
	"os/exec"
	"reflect"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	skipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	client, err := database.ConnectRedis(ctx, config.RedisConfig{Host: host, Port: port.Port()})
	if err != nil {
		t.Fatalf("ConnectRedis() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return NewManager(client, time.Minute)
}

func TestCategories_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if _, ok := m.GetCategories(ctx); ok {
		t.Fatal("GetCategories() hit on an empty cache")
	}

	want := map[string]string{"1": "Science", "2": "Art"}
	m.SetCategories(ctx, want)

	got, ok := m.GetCategories(ctx)
	if !ok {
		t.Fatal("GetCategories() missed after SetCategories()")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetCategories() = %v, want %v", got, want)
	}

	ttl, err := m.redis.TTL(ctx, categoriesKey).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("categories TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRateLimit_CountsWithinWindow(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	const limit = 3

	for i := 1; i <= limit; i++ {
		limited, err := m.RateLimit(ctx, "10.0.0.1", limit, time.Minute)
		if err != nil {
			t.Fatalf("RateLimit() call %d error = %v", i, err)
		}
		if limited {
			t.Fatalf("RateLimit() call %d limited, want allowed", i)
		}
	}

	limited, err := m.RateLimit(ctx, "10.0.0.1", limit, time.Minute)
	if err != nil {
		t.Fatalf("RateLimit() error = %v", err)
	}
	if !limited {
		t.Error("RateLimit() allowed a request over the limit")
	}

	limited, err = m.RateLimit(ctx, "10.0.0.2", limit, time.Minute)
	if err != nil || limited {
		t.Errorf("RateLimit() for another client = %v, %v; want allowed", limited, err)
	}

	ttl, err := m.redis.TTL(ctx, rateLimitPrefix+"10.0.0.1").Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("rate limit TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRateLimit_RestoresMissingExpiry(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	key := rateLimitPrefix + "10.0.0.3"

	// a counter that lost its expiry would otherwise block the client forever
	if err := m.redis.Set(ctx, key, 100, 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	limited, err := m.RateLimit(ctx, "10.0.0.3", 5, 30*time.Second)
	if err != nil {
		t.Fatalf("RateLimit() error = %v", err)
	}
	if !limited {
		t.Error("RateLimit() allowed a client over the limit")
	}

	ttl, err := m.redis.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Second {
		t.Errorf("rate limit TTL = %v, want within (0, 30s]", ttl)
	}

	// an existing expiry is kept, so the window does not slide
	if err := m.redis.Expire(ctx, key, 10*time.Second).Err(); err != nil {
		t.Fatalf("Expire() error = %v", err)
	}
	if _, err := m.RateLimit(ctx, "10.0.0.3", 5, 30*time.Second); err != nil {
		t.Fatalf("RateLimit() error = %v", err)
	}
	if ttl := m.redis.TTL(ctx, key).Val(); ttl > 10*time.Second {
		t.Errorf("rate limit TTL = %v after a repeat call, want <= 10s", ttl)
	}
}
