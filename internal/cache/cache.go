// Package cache keeps the category mapping and per-client rate-limit
// counters in Redis. Redis failures never fail a request: lookups degrade to
// a miss, and a circuit breaker stops calling Redis while it is unhealthy.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/zizouhuweidi/trivia/internal/logging"
	"github.com/zizouhuweidi/trivia/internal/metrics"
)

const (
	// Redis key prefixes
	keyPrefix       = "trivia:"
	categoriesKey   = keyPrefix + "categories"
	rateLimitPrefix = keyPrefix + "ratelimit:"

	breakerName = "redis-cache"
)

// Manager wraps the Redis client used for caching and rate limiting
type Manager struct {
	redis   *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

// NewManager creates a new cache manager
func NewManager(client *redis.Client, ttl time.Duration) *Manager {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing key is a normal miss, not a Redis failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Manager{redis: client, ttl: ttl, breaker: breaker}
}

// GetCategories returns the cached id->type mapping
func (m *Manager) GetCategories(ctx context.Context) (map[string]string, bool) {
	v, err := m.breaker.Execute(func() (any, error) {
		return m.redis.Get(ctx, categoriesKey).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		} else {
			metrics.CacheRequests.WithLabelValues("error").Inc()
			logging.Debug().Err(err).Msg("category cache lookup failed")
		}
		return nil, false
	}

	var categories map[string]string
	if err := json.Unmarshal(v.([]byte), &categories); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Msg("discarding malformed category cache entry")
		return nil, false
	}

	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return categories, true
}

// SetCategories stores the id->type mapping. Categories are read-only
// through the API, so the entry only expires.
func (m *Manager) SetCategories(ctx context.Context, categories map[string]string) {
	data, err := json.Marshal(categories)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to marshal categories")
		return
	}

	_, err = m.breaker.Execute(func() (any, error) {
		return nil, m.redis.Set(ctx, categoriesKey, data, m.ttl).Err()
	})
	if err != nil {
		logging.Debug().Err(err).Msg("failed to cache categories")
	}
}

// RateLimit reports whether key has exceeded limit requests in the current window
func (m *Manager) RateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := rateLimitPrefix + key

	// NX keeps the window fixed while still healing a key left without a TTL
	var incr *redis.IntCmd
	_, err := m.breaker.Execute(func() (any, error) {
		return m.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, redisKey)
			pipe.ExpireNX(ctx, redisKey, window)
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	return incr.Val() > int64(limit), nil
}
