package domain

import (
	"context"
	"errors"
	"strconv"
)

var ErrCategoryNotFound = errors.New("category not found")

// Category groups questions by subject. Categories are seeded at setup and
// are read-only through the API.
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// CategoryRepository defines the interface for category-related operations
type CategoryRepository interface {
	// List retrieves all categories ordered by id
	List(ctx context.Context) ([]Category, error)

	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id int) (*Category, error)
}

// CategoryMap keys each category's type by its stringified id.
func CategoryMap(categories []Category) map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[strconv.Itoa(c.ID)] = c.Type
	}
	return m
}
