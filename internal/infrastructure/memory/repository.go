package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/todorpc/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ domain.Repository = (*Repository)(nil)

// Repository keeps todos in insertion order inside the instance. Ids come
// from a counter that starts at 0 and never goes back, so deleted ids are
// not reused.
type Repository struct {
	mu     sync.Mutex
	todos  []domain.Todo
	nextID int64
	tracer trace.Tracer

	// Now is the clock used for creation times.
	Now func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		todos:  make([]domain.Todo, 0),
		tracer: otel.Tracer("memory-repository"),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) List(ctx context.Context) ([]domain.Todo, error) {
	_, span := r.tracer.Start(ctx, "repository.List")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	todos := make([]domain.Todo, 0, len(r.todos))
	for i := len(r.todos) - 1; i >= 0; i-- {
		todos = append(todos, r.todos[i])
	}

	span.SetAttributes(attribute.Int("returned_count", len(todos)))
	return todos, nil
}

func (r *Repository) Add(ctx context.Context, title string) (domain.Todo, error) {
	_, span := r.tracer.Start(ctx, "repository.Add")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	todo := domain.Todo{
		ID:        r.nextID,
		Title:     title,
		Completed: false,
		CreatedAt: r.Now().UTC(),
	}
	r.nextID++
	r.todos = append(r.todos, todo)

	span.SetAttributes(attribute.Int64("todo.id", todo.ID))
	return todo, nil
}

func (r *Repository) Toggle(ctx context.Context, id int64) (domain.Todo, error) {
	_, span := r.tracer.Start(ctx, "repository.Toggle")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("not_found", true))
		return domain.Todo{}, domain.NewNotFoundError(id)
	}

	r.todos[i] = r.todos[i].Toggled()
	return r.todos[i], nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	_, span := r.tracer.Start(ctx, "repository.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("not_found", true))
		return 0, domain.NewNotFoundError(id)
	}

	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return id, nil
}

// indexOf must be called with mu held.
func (r *Repository) indexOf(id int64) int {
	for i, todo := range r.todos {
		if todo.ID == id {
			return i
		}
	}
	return -1
}
