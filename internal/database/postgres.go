package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/trivia/internal/config"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS categories (
	id   SERIAL PRIMARY KEY,
	type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
	id         SERIAL PRIMARY KEY,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	category   INTEGER NOT NULL,
	difficulty INTEGER NOT NULL
);
`

// ConnectPostgres establishes a connection pool to PostgreSQL
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// MigratePostgres creates the trivia tables and, when seed is set and no
// categories exist yet, loads the starter data.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, seed bool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if !seed {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range SeedCategories {
		if _, err := tx.Exec(ctx, `INSERT INTO categories (id, type) VALUES ($1, $2)`, c.ID, c.Type); err != nil {
			return fmt.Errorf("failed to seed category %d: %w", c.ID, err)
		}
	}
	// explicit ids bypass the sequence
	if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('categories', 'id'), (SELECT MAX(id) FROM categories))`); err != nil {
		return fmt.Errorf("failed to reset category sequence: %w", err)
	}

	for _, q := range SeedQuestions {
		_, err := tx.Exec(ctx, `
			INSERT INTO questions (question, answer, category, difficulty)
			VALUES ($1, $2, $3, $4)
		`, q.Question, q.Answer, q.Category, q.Difficulty)
		if err != nil {
			return fmt.Errorf("failed to seed question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
