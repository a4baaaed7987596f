package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/zizouhuweidi/trivia/internal/logging"
)

const redisLimitTimeout = 100 * time.Millisecond

// Counter counts requests per key in fixed windows. It reports whether the
// key is over limit.
type Counter interface {
	RateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitConfig configures RateLimit
type RateLimitConfig struct {
	// Requests allowed per client and window. Zero disables limiting.
	Requests int
	Window   time.Duration

	// Counter shares limits between instances. Nil keeps limits in memory.
	Counter Counter
}

// redisStore counts in Redis and falls back to the in-memory limiter while
// Redis is failing.
type redisStore struct {
	counter  Counter
	limit    int
	window   time.Duration
	fallback echomw.RateLimiterStore
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisLimitTimeout)
	defer cancel()

	exceeded, err := s.counter.RateLimit(ctx, identifier, s.limit, s.window)
	if err != nil {
		logging.Debug().Err(err).Msg("redis rate limit failed, using in-memory limiter")
		return s.fallback.Allow(identifier)
	}
	return !exceeded, nil
}

// NewRateLimitStore builds the limiter store for cfg
func NewRateLimitStore(cfg RateLimitConfig) echomw.RateLimiterStore {
	memory := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		Burst:     cfg.Requests,
		ExpiresIn: 3 * cfg.Window,
	})
	if cfg.Counter == nil {
		return memory
	}
	return &redisStore{
		counter:  cfg.Counter,
		limit:    cfg.Requests,
		window:   cfg.Window,
		fallback: memory,
	}
}

// RateLimit rejects clients over the limit with 429. Health and metrics
// endpoints are never limited.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Request().URL.Path {
			case "/health", "/metrics":
				return true
			}
			return false
		},
		Store: NewRateLimitStore(cfg),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden).SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logging.Debug().Str("client", identifier).Msg("rate limit exceeded")
			return echo.NewHTTPError(http.StatusTooManyRequests).SetInternal(err)
		},
	})
}
