package domain

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidQuestion     = errors.New("question, answer, category and difficulty are required")
	ErrInvalidPage         = errors.New("page must be a positive integer")
	ErrMissingSearchTerm   = errors.New("searchTerm is required")
	ErrMissingQuizCategory = errors.New("quiz_category is required")
)

// Question lifecycle events published after a successful commit
const (
	EventQuestionCreated = "question.created"
	EventQuestionDeleted = "question.deleted"
)

// QuestionRepository defines the interface for question-related operations
type QuestionRepository interface {
	// List returns one window of questions ordered by id
	List(ctx context.Context, limit, offset int) ([]Question, error)

	// ListAll returns every question ordered by id
	ListAll(ctx context.Context) ([]Question, error)

	// ListByCategory returns the questions whose category equals categoryID
	ListByCategory(ctx context.Context, categoryID int) ([]Question, error)

	// Search returns the questions whose text contains term, ignoring case
	Search(ctx context.Context, term string) ([]Question, error)

	// Count returns the total number of questions
	Count(ctx context.Context) (int, error)

	// GetByID retrieves a question by its ID
	GetByID(ctx context.Context, id int) (*Question, error)

	// Create inserts a question and sets its ID
	Create(ctx context.Context, question *Question) error

	// Delete deletes a question
	Delete(ctx context.Context, id int) error
}

// Question represents a trivia question
type Question struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// Validate checks that every field needed to store the question is present.
// The category is not checked against the categories table.
func (q *Question) Validate() error {
	if q.Question == "" || q.Answer == "" || q.Category == 0 || q.Difficulty == 0 {
		return ErrInvalidQuestion
	}
	return nil
}
