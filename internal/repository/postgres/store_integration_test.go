//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/domain"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	skipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "trivia",
				"POSTGRES_PASSWORD": "trivia",
				"POSTGRES_DB":       "trivia_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	pool, err := database.ConnectPostgres(ctx, config.PostgresConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "trivia",
		Password: "trivia",
		DBName:   "trivia_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.MigratePostgres(ctx, pool, true); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(pool)
}

func TestStore_Postgres(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("categories are seeded", func(t *testing.T) {
		categories, err := store.Categories().List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(categories) != len(database.SeedCategories) {
			t.Errorf("got %d categories, want %d", len(categories), len(database.SeedCategories))
		}

		_, err = store.Categories().GetByID(ctx, 1000)
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			t.Errorf("GetByID(1000) error = %v, want ErrCategoryNotFound", err)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		total, err := store.Questions().Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		page, err := store.Questions().List(ctx, 10, 0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(page) != min(10, total) {
			t.Errorf("first page has %d questions, want %d", len(page), min(10, total))
		}
		beyond, err := store.Questions().List(ctx, 10, total+100)
		if err != nil {
			t.Fatalf("List() beyond end error = %v", err)
		}
		if len(beyond) != 0 {
			t.Errorf("page beyond end has %d questions, want 0", len(beyond))
		}
	})

	t.Run("search ignores case and wildcards", func(t *testing.T) {
		q := &domain.Question{Question: "Is 100% OF this_odd?", Answer: "yes", Category: 1, Difficulty: 1}
		if err := store.Questions().Create(ctx, q); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		found, err := store.Questions().Search(ctx, "100% of")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(found) != 1 || found[0].ID != q.ID {
			t.Errorf("Search() = %+v, want only question %d", found, q.ID)
		}
		none, err := store.Questions().Search(ctx, "100%%")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Search(100%%%%) matched %d questions, want 0", len(none))
		}
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		before, _ := store.Questions().Count(ctx)
		err := store.WithinTx(ctx, func(tx domain.Store) error {
			q := &domain.Question{Question: "tx?", Answer: "no", Category: 2, Difficulty: 2}
			if err := tx.Questions().Create(ctx, q); err != nil {
				return err
			}
			return fmt.Errorf("abort")
		})
		if err == nil {
			t.Fatal("WithinTx() = nil, want abort error")
		}
		after, _ := store.Questions().Count(ctx)
		if after != before {
			t.Errorf("count after rollback = %d, want %d", after, before)
		}
	})

	t.Run("delete", func(t *testing.T) {
		q := &domain.Question{Question: "to delete", Answer: "a", Category: 3, Difficulty: 1}
		if err := store.Questions().Create(ctx, q); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := store.Questions().Delete(ctx, q.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := store.Questions().Delete(ctx, q.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
			t.Errorf("second Delete() error = %v, want ErrQuestionNotFound", err)
		}
	})
}
