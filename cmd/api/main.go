package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zizouhuweidi/trivia/internal/cache"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/logging"
	"github.com/zizouhuweidi/trivia/internal/middleware"
	"github.com/zizouhuweidi/trivia/internal/repository/memory"
	"github.com/zizouhuweidi/trivia/internal/repository/postgres"
	"github.com/zizouhuweidi/trivia/internal/repository/sqlite"
	"github.com/zizouhuweidi/trivia/internal/server"
	"github.com/zizouhuweidi/trivia/internal/service"
	"github.com/zizouhuweidi/trivia/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the store
	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open database")
	}
	defer closeStore()

	// Initialize websocket hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	opts := []service.Option{
		service.WithEventPublisher(hub),
		service.WithQuestionsPerPage(cfg.API.QuestionsPerPage),
	}
	rateLimit := middleware.RateLimitConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	}

	// Redis is optional: without it categories are not cached and rate
	// limits are kept per instance.
	if cfg.Redis.Enabled {
		redisClient, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logging.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("redis unavailable, continuing without cache")
		} else {
			defer redisClient.Close()
			cacheManager := cache.NewManager(redisClient, cfg.Redis.CacheTTL)
			opts = append(opts, service.WithCategoryCache(cacheManager))
			rateLimit.Counter = cacheManager
		}
	}

	triviaService := service.NewTriviaService(store, opts...)

	e := server.New(server.Dependencies{
		Service:   triviaService,
		Health:    store,
		Hub:       hub,
		RateLimit: rateLimit,
	})

	// Start server
	go func() {
		logging.Info().Str("addr", cfg.Server.Address()).Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := e.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore opens the configured backend, applies the schema and returns a
// function releasing its resources.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (domain.Store, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePostgres(ctx, pool, cfg.Seed); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewStore(pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(ctx, db, cfg.Seed); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewStore(db), func() { db.Close() }, nil

	case config.DriverMemory:
		if !cfg.Seed {
			return memory.New(database.SeedCategories, nil), func() {}, nil
		}
		return memory.New(database.SeedCategories, database.SeedQuestions), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
