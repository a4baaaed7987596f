package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	category   INTEGER NOT NULL,
	difficulty INTEGER NOT NULL
);
`

// OpenSQLite opens the SQLite database at path (":memory:" for a private
// in-memory database).
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	// a single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY on files
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping sqlite database: %w", err)
	}

	return db, nil
}

// MigrateSQLite creates the trivia tables and, when seed is set and no
// categories exist yet, loads the starter data.
func MigrateSQLite(ctx context.Context, db *sql.DB, seed bool) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if !seed {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range SeedCategories {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (id, type) VALUES (?, ?)`, c.ID, c.Type); err != nil {
			return fmt.Errorf("failed to seed category %d: %w", c.ID, err)
		}
	}

	for _, q := range SeedQuestions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (question, answer, category, difficulty) VALUES (?, ?, ?, ?)`,
			q.Question, q.Answer, q.Category, q.Difficulty,
		)
		if err != nil {
			return fmt.Errorf("failed to seed question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
