// Package memory implements domain.Store in process memory. It backs the
// "memory" database driver and the service and handler tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

type dataset struct {
	categories []domain.Category
	questions  []domain.Question
	nextID     int
}

func (d *dataset) clone() *dataset {
	return &dataset{
		categories: slices.Clone(d.categories),
		questions:  slices.Clone(d.questions),
		nextID:     d.nextID,
	}
}

// Store keeps categories and questions in slices ordered by id. A
// transaction works on a copy that replaces the shared data on commit.
type Store struct {
	mu      sync.RWMutex
	data    *dataset
	writeMu *sync.Mutex // nil when bound to a transaction
}

// New creates a store holding copies of categories and questions. Questions
// with a zero id are assigned one.
func New(categories []domain.Category, questions []domain.Question) *Store {
	d := &dataset{categories: slices.Clone(categories), nextID: 1}
	slices.SortFunc(d.categories, func(a, b domain.Category) int { return a.ID - b.ID })

	for _, q := range questions {
		if q.ID >= d.nextID {
			d.nextID = q.ID + 1
		}
	}
	for _, q := range questions {
		if q.ID == 0 {
			q.ID = d.nextID
			d.nextID++
		}
		d.questions = append(d.questions, q)
	}
	slices.SortFunc(d.questions, func(a, b domain.Question) int { return a.ID - b.ID })

	return &Store{data: d, writeMu: &sync.Mutex{}}
}

func (s *Store) Questions() domain.QuestionRepository {
	return &questionRepository{s: s}
}

func (s *Store) Categories() domain.CategoryRepository {
	return &categoryRepository{s: s}
}

// WithinTx serialises writers; fn sees a private copy of the data.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.writeMu == nil {
		return fn(s)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	tx := &Store{data: snapshot}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// write runs fn under the writer lock of the root store.
func (s *Store) write(fn func(d *dataset) error) error {
	if s.writeMu != nil {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(d *dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

type questionRepository struct {
	s *Store
}

func (r *questionRepository) filter(ctx context.Context, keep func(domain.Question) bool) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []domain.Question{}
	r.s.read(func(d *dataset) {
		for _, q := range d.questions {
			if keep(q) {
				out = append(out, q)
			}
		}
	})
	return out, nil
}

func (r *questionRepository) List(ctx context.Context, limit, offset int) ([]domain.Question, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(all) {
		return []domain.Question{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *questionRepository) ListAll(ctx context.Context) ([]domain.Question, error) {
	return r.filter(ctx, func(domain.Question) bool { return true })
}

func (r *questionRepository) ListByCategory(ctx context.Context, categoryID int) ([]domain.Question, error) {
	return r.filter(ctx, func(q domain.Question) bool { return q.Category == categoryID })
}

func (r *questionRepository) Search(ctx context.Context, term string) ([]domain.Question, error) {
	term = strings.ToLower(term)
	return r.filter(ctx, func(q domain.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), term)
	})
}

func (r *questionRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	r.s.read(func(d *dataset) { n = len(d.questions) })
	return n, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id int) (*domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *domain.Question
	r.s.read(func(d *dataset) {
		if i := indexQuestion(d.questions, id); i >= 0 {
			q := d.questions[i]
			found = &q
		}
	})
	if found == nil {
		return nil, domain.ErrQuestionNotFound
	}
	return found, nil
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.write(func(d *dataset) error {
		question.ID = d.nextID
		d.nextID++
		d.questions = append(d.questions, *question)
		return nil
	})
}

func (r *questionRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.write(func(d *dataset) error {
		i := indexQuestion(d.questions, id)
		if i < 0 {
			return domain.ErrQuestionNotFound
		}
		d.questions = slices.Delete(d.questions, i, i+1)
		return nil
	})
}

func indexQuestion(questions []domain.Question, id int) int {
	i, ok := slices.BinarySearchFunc(questions, id, func(q domain.Question, id int) int { return q.ID - id })
	if !ok {
		return -1
	}
	return i
}

type categoryRepository struct {
	s *Store
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Category
	r.s.read(func(d *dataset) { out = slices.Clone(d.categories) })
	if out == nil {
		out = []domain.Category{}
	}
	return out, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *domain.Category
	r.s.read(func(d *dataset) {
		for _, c := range d.categories {
			if c.ID == id {
				c := c
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return found, nil
}
