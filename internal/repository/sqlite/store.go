// Package sqlite implements domain.Store with database/sql and go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.Store on top of a SQLite handle
type Store struct {
	conn *sql.DB // nil when bound to a transaction
	db   dbtx
}

// NewStore creates a new store
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn, db: conn}
}

func (s *Store) Questions() domain.QuestionRepository {
	return &QuestionRepository{db: s.db}
}

func (s *Store) Categories() domain.CategoryRepository {
	return &CategoryRepository{db: s.db}
}

// WithinTx runs fn in a transaction
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.conn == nil {
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	return s.conn.PingContext(ctx)
}
