package domain

import "context"

// Store is the unit of work over the trivia tables.
type Store interface {
	Questions() QuestionRepository
	Categories() CategoryRepository

	// WithinTx runs fn against a transaction-bound Store. The transaction is
	// committed when fn returns nil and rolled back otherwise, including when
	// fn panics. Calling WithinTx on a transaction-bound Store reuses the
	// surrounding transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// Ping checks that the backing database is reachable
	Ping(ctx context.Context) error
}
