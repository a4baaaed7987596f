package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

func fixtures() ([]domain.Category, []domain.Question) {
	categories := []domain.Category{{ID: 2, Type: "Art"}, {ID: 1, Type: "Science"}}
	questions := []domain.Question{
		{ID: 5, Question: "Who painted the Mona Lisa?", Answer: "Da Vinci", Category: 2, Difficulty: 1},
		{Question: "What is the boiling point of water?", Answer: "100C", Category: 1, Difficulty: 1},
	}
	return categories, questions
}

func TestNew_AssignsIDsAndSorts(t *testing.T) {
	store := New(fixtures())
	ctx := context.Background()

	questions, err := store.Questions().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(questions) != 2 || questions[0].ID != 5 || questions[1].ID != 6 {
		t.Errorf("ListAll() ids = %+v, want [5 6]", questions)
	}

	categories, _ := store.Categories().List(ctx)
	if categories[0].ID != 1 || categories[1].ID != 2 {
		t.Errorf("categories not ordered by id: %+v", categories)
	}

	q := &domain.Question{Question: "new", Answer: "a", Category: 1, Difficulty: 2}
	if err := store.Questions().Create(ctx, q); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if q.ID != 7 {
		t.Errorf("Create() id = %d, want 7", q.ID)
	}
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	store := New(fixtures())
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := store.WithinTx(ctx, func(tx domain.Store) error {
		if err := tx.Questions().Delete(ctx, 5); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithinTx() error = %v, want errAbort", err)
	}
	if _, err := store.Questions().GetByID(ctx, 5); err != nil {
		t.Errorf("question 5 should survive the rollback: %v", err)
	}

	func() {
		defer func() { _ = recover() }()
		_ = store.WithinTx(ctx, func(tx domain.Store) error {
			_ = tx.Questions().Delete(ctx, 5)
			panic("boom")
		})
	}()
	if _, err := store.Questions().GetByID(ctx, 5); err != nil {
		t.Errorf("question 5 should survive a panicking transaction: %v", err)
	}

	err = store.WithinTx(ctx, func(tx domain.Store) error {
		return tx.Questions().Delete(ctx, 5)
	})
	if err != nil {
		t.Fatalf("WithinTx() error = %v", err)
	}
	if _, err := store.Questions().GetByID(ctx, 5); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Errorf("GetByID(5) after commit error = %v, want ErrQuestionNotFound", err)
	}
}

func TestStore_ConcurrentCreates(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithinTx(ctx, func(tx domain.Store) error {
				return tx.Questions().Create(ctx, &domain.Question{Question: "q", Answer: "a", Category: 1, Difficulty: 1})
			})
		}()
	}
	wg.Wait()

	count, _ := store.Questions().Count(ctx)
	if count != 50 {
		t.Errorf("Count() = %d, want 50", count)
	}
}

func TestQuestionRepository_Search(t *testing.T) {
	store := New(fixtures())
	found, err := store.Questions().Search(context.Background(), "THE")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("Search(THE) returned %d questions, want 2", len(found))
	}
}

func TestQuestionRepository_ListOutOfRange(t *testing.T) {
	store := New(fixtures())
	ctx := context.Background()

	for _, offset := range []int{2, 100, -10} {
		got, err := store.Questions().List(ctx, 10, offset)
		if err != nil {
			t.Fatalf("List(10, %d) error = %v", offset, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("List(10, %d) = %#v, want empty slice", offset, got)
		}
	}
}
