// Package repotest holds the behavioural checks every domain.Repository
// implementation must pass.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/dmehra2102/todorpc/internal/domain"
)

// Run exercises repo constructors produced by newRepo. Each subtest gets a
// fresh, empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) domain.Repository) {
	t.Helper()

	t.Run("starts empty", func(t *testing.T) {
		repo := newRepo(t)
		todos, err := repo.List(context.Background())
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(todos) != 0 {
			t.Fatalf("expected no todos, got %d", len(todos))
		}
	})

	t.Run("add assigns id and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		todo, err := repo.Add(context.Background(), "Buy milk")
		if err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
		if todo.Title != "Buy milk" || todo.Completed {
			t.Fatalf("unexpected todo: %+v", todo)
		}
		if todo.CreatedAt.IsZero() {
			t.Fatal("expected creation time to be set")
		}
		if todo.CreatedAt.Location().String() != "UTC" {
			t.Fatalf("expected UTC timestamp, got %s", todo.CreatedAt.Location())
		}
	})

	t.Run("lists newest first with distinct ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := mustAdd(t, repo, "First")
		second := mustAdd(t, repo, "Second")
		third := mustAdd(t, repo, "Third")

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(todos) != 3 {
			t.Fatalf("expected 3 todos, got %d", len(todos))
		}

		want := []int64{third.ID, second.ID, first.ID}
		for i, todo := range todos {
			if todo.ID != want[i] {
				t.Fatalf("position %d: got id %d want %d", i, todo.ID, want[i])
			}
		}

		seen := map[int64]bool{}
		for _, todo := range todos {
			if seen[todo.ID] {
				t.Fatalf("duplicate id %d", todo.ID)
			}
			seen[todo.ID] = true
		}
	})

	t.Run("toggle is its own inverse", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		created := mustAdd(t, repo, "flip status")

		toggled, err := repo.Toggle(ctx, created.ID)
		if err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
		if !toggled.Completed || toggled.ID != created.ID || toggled.Title != created.Title {
			t.Fatalf("unexpected toggle result: %+v", toggled)
		}
		if !toggled.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("creation time changed: %v -> %v", created.CreatedAt, toggled.CreatedAt)
		}

		back, err := repo.Toggle(ctx, created.ID)
		if err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
		if back.Completed {
			t.Fatal("expected completed to be restored to false")
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		keep := mustAdd(t, repo, "keep me")
		gone := mustAdd(t, repo, "delete me")

		id, err := repo.Delete(ctx, gone.ID)
		if err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if id != gone.ID {
			t.Fatalf("Delete returned id %d, want %d", id, gone.ID)
		}

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(todos) != 1 || todos[0].ID != keep.ID {
			t.Fatalf("unexpected todos after delete: %+v", todos)
		}

		assertNotFound(t, gone.ID, func() error { _, err := repo.Toggle(ctx, gone.ID); return err })
		assertNotFound(t, gone.ID, func() error { _, err := repo.Delete(ctx, gone.ID); return err })
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		assertNotFound(t, 999, func() error { _, err := repo.Toggle(ctx, 999); return err })
		assertNotFound(t, 999, func() error { _, err := repo.Delete(ctx, 999); return err })
		assertNotFound(t, -1, func() error { _, err := repo.Toggle(ctx, -1); return err })
		assertNotFound(t, -1, func() error { _, err := repo.Delete(ctx, -1); return err })
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		a := mustAdd(t, repo, "a")
		if _, err := repo.Delete(ctx, a.ID); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		b := mustAdd(t, repo, "b")
		if b.ID == a.ID {
			t.Fatalf("id %d was reused", a.ID)
		}
	})

	t.Run("list returns copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mustAdd(t, repo, "original")

		todos, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		todos[0].Title = "mutated"

		again, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if again[0].Title != "original" {
			t.Fatalf("caller mutation leaked into the store: %q", again[0].Title)
		}
	})
}

func mustAdd(t *testing.T, repo domain.Repository, title string) domain.Todo {
	t.Helper()
	todo, err := repo.Add(context.Background(), title)
	if err != nil {
		t.Fatalf("Add(%q) returned error: %v", title, err)
	}
	return todo
}

func assertNotFound(t *testing.T, id int64, call func() error) {
	t.Helper()
	err := call()
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.ID != id {
		t.Fatalf("NotFoundError carries id %d, want %d", notFound.ID, id)
	}
}
