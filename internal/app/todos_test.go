package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/dmehra2102/todorpc/internal/infrastructure/memory"
	"go.uber.org/zap/zaptest"
)

// faultyRepo fails every call with err, or returns rows as stored.
type faultyRepo struct {
	err  error
	rows []domain.Todo
}

func (f *faultyRepo) List(ctx context.Context) ([]domain.Todo, error) {
	return f.rows, f.err
}

func (f *faultyRepo) Add(ctx context.Context, title string) (domain.Todo, error) {
	if f.err != nil {
		return domain.Todo{}, f.err
	}
	return f.rows[0], nil
}

func (f *faultyRepo) Toggle(ctx context.Context, id int64) (domain.Todo, error) {
	if f.err != nil {
		return domain.Todo{}, f.err
	}
	return f.rows[0], nil
}

func (f *faultyRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return id, f.err
}

func TestScenarioInMemory(t *testing.T) {
	svc := NewTodoService(memory.NewRepository(), zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := svc.AddTodo(ctx, "write tests")
	if err != nil {
		t.Fatalf("AddTodo returned error: %v", err)
	}
	if created.ID != 0 || created.Title != "write tests" || created.Completed {
		t.Fatalf("unexpected todo: %+v", created)
	}

	todos, err := svc.GetTodos(ctx)
	if err != nil {
		t.Fatalf("GetTodos returned error: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != 0 {
		t.Fatalf("unexpected todos: %+v", todos)
	}

	toggled, err := svc.ToggleTodo(ctx, 0)
	if err != nil || !toggled.Completed {
		t.Fatalf("expected completed todo, got %+v, %v", toggled, err)
	}
	toggled, err = svc.ToggleTodo(ctx, 0)
	if err != nil || toggled.Completed {
		t.Fatalf("expected todo to be active again, got %+v, %v", toggled, err)
	}

	deleted, err := svc.DeleteTodo(ctx, 0)
	if err != nil || deleted != 0 {
		t.Fatalf("expected deleted id 0, got %d, %v", deleted, err)
	}

	todos, err = svc.GetTodos(ctx)
	if err != nil || len(todos) != 0 {
		t.Fatalf("expected empty list, got %+v, %v", todos, err)
	}

	_, err = svc.ToggleTodo(ctx, 0)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) || notFound.ID != 0 {
		t.Fatalf("expected NotFound(0), got %v", err)
	}
}

func TestAddTodoRejectsBadTitles(t *testing.T) {
	svc := NewTodoService(memory.NewRepository(), zaptest.NewLogger(t))

	for _, title := range []string{"", "   "} {
		_, err := svc.AddTodo(context.Background(), title)
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("AddTodo(%q): expected ValidationError, got %v", title, err)
		}
	}

	todos, _ := svc.GetTodos(context.Background())
	if len(todos) != 0 {
		t.Fatalf("rejected titles must not be stored, got %d todos", len(todos))
	}
}

func TestNegativeIDsAreNotFound(t *testing.T) {
	svc := NewTodoService(memory.NewRepository(), zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := svc.AddTodo(ctx, "existing"); err != nil {
		t.Fatalf("AddTodo returned error: %v", err)
	}

	var notFound *domain.NotFoundError
	_, err := svc.ToggleTodo(ctx, -1)
	if !errors.As(err, &notFound) || notFound.ID != -1 {
		t.Fatalf("ToggleTodo(-1): expected NotFound(-1), got %T %v", err, err)
	}
	_, err = svc.DeleteTodo(ctx, -1)
	if !errors.As(err, &notFound) || notFound.ID != -1 {
		t.Fatalf("DeleteTodo(-1): expected NotFound(-1), got %T %v", err, err)
	}
}

func TestLongTitlesAreAccepted(t *testing.T) {
	svc := NewTodoService(memory.NewRepository(), zaptest.NewLogger(t))

	for _, title := range []string{strings.Repeat("日", 70), strings.Repeat("a", 500)} {
		todo, err := svc.AddTodo(context.Background(), title)
		if err != nil {
			t.Fatalf("AddTodo(%d bytes) returned error: %v", len(title), err)
		}
		if todo.Title != title {
			t.Fatalf("title changed on the way through: %q", todo.Title)
		}
	}
}

func TestStorageFaultsBecomeUnknown(t *testing.T) {
	fault := fmt.Errorf("failed to list todos: %w", errors.New("disk I/O error"))
	svc := NewTodoService(&faultyRepo{err: fault}, zaptest.NewLogger(t))
	ctx := context.Background()

	calls := map[string]func() error{
		"get":    func() error { _, err := svc.GetTodos(ctx); return err },
		"add":    func() error { _, err := svc.AddTodo(ctx, "x"); return err },
		"toggle": func() error { _, err := svc.ToggleTodo(ctx, 1); return err },
		"delete": func() error { _, err := svc.DeleteTodo(ctx, 1); return err },
	}

	for name, call := range calls {
		err := call()
		var unknown *domain.UnknownError
		if !errors.As(err, &unknown) {
			t.Fatalf("%s: expected UnknownError, got %T %v", name, err, err)
		}
		if unknown.Message != fault.Error() {
			t.Fatalf("%s: diagnostic message lost: %q", name, unknown.Message)
		}
	}
}

func TestBackendNotFoundPassesThrough(t *testing.T) {
	svc := NewTodoService(&faultyRepo{err: domain.NewNotFoundError(42)}, zaptest.NewLogger(t))

	_, err := svc.DeleteTodo(context.Background(), 42)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) || notFound.ID != 42 {
		t.Fatalf("expected NotFound(42), got %v", err)
	}
}

func TestUndecodableRowsBecomeValidation(t *testing.T) {
	bad := domain.Todo{ID: 1, Title: "", CreatedAt: time.Now()}
	svc := NewTodoService(&faultyRepo{rows: []domain.Todo{bad}}, zaptest.NewLogger(t))
	ctx := context.Background()

	var validation *domain.ValidationError

	if _, err := svc.GetTodos(ctx); !errors.As(err, &validation) {
		t.Fatalf("GetTodos: expected ValidationError, got %v", err)
	}
	if _, err := svc.AddTodo(ctx, "fine"); !errors.As(err, &validation) {
		t.Fatalf("AddTodo: expected ValidationError, got %v", err)
	}
	if _, err := svc.ToggleTodo(ctx, 1); !errors.As(err, &validation) {
		t.Fatalf("ToggleTodo: expected ValidationError, got %v", err)
	}
}

func TestNewestFirst(t *testing.T) {
	svc := NewTodoService(memory.NewRepository(), zaptest.NewLogger(t))
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		if _, err := svc.AddTodo(ctx, title); err != nil {
			t.Fatalf("AddTodo returned error: %v", err)
		}
	}

	todos, err := svc.GetTodos(ctx)
	if err != nil {
		t.Fatalf("GetTodos returned error: %v", err)
	}
	want := []string{"Third", "Second", "First"}
	for i, todo := range todos {
		if todo.Title != want[i] {
			t.Fatalf("position %d: got %q want %q", i, todo.Title, want[i])
		}
	}
}
