package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/todorpc/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultQueryTimeout = 5 * time.Second

const todoColumns = "id, title, completed, created_at"

var _ domain.Repository = (*Repository)(nil)

type Repository struct {
	db           *sql.DB
	dialect      Dialect
	tracer       trace.Tracer
	queryTimeout time.Duration

	// Now is the clock used for creation times.
	Now func() time.Time
}

func NewRepository(db *sql.DB, dialect Dialect, queryTimeout time.Duration) *Repository {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Repository{
		db:           db,
		dialect:      dialect,
		tracer:       otel.Tracer("sql-repository"),
		queryTimeout: queryTimeout,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) List(ctx context.Context) ([]domain.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "repository.List")
	defer span.End()
	span.SetAttributes(attribute.String("db.system", string(r.dialect)))

	query := `
		SELECT ` + todoColumns + `
		FROM todos
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	span.SetAttributes(attribute.Int("returned_count", len(todos)))
	return todos, nil
}

func (r *Repository) Add(ctx context.Context, title string) (domain.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "repository.Add")
	defer span.End()

	query := r.dialect.Rebind(`
		INSERT INTO todos (title, completed, created_at)
		VALUES (?, ?, ?)
		RETURNING ` + todoColumns)

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, title, false, r.Now().UTC()))
	if err != nil {
		span.RecordError(err)
		return domain.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	span.SetAttributes(attribute.Int64("todo.id", todo.ID))
	return todo, nil
}

func (r *Repository) Toggle(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "repository.Toggle")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	query := r.dialect.Rebind(`
		UPDATE todos
		SET completed = NOT completed
		WHERE id = ?
		RETURNING ` + todoColumns)

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			span.SetAttributes(attribute.Bool("not_found", true))
			return domain.Todo{}, domain.NewNotFoundError(id)
		}
		span.RecordError(err)
		return domain.Todo{}, fmt.Errorf("failed to toggle todo: %w", err)
	}

	return todo, nil
}

// Delete checks for the row before removing it, so a concurrent external
// writer can slip in between the two statements.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "repository.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	var existing int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT id FROM todos WHERE id = ?`), id).Scan(&existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			span.SetAttributes(attribute.Bool("not_found", true))
			return 0, domain.NewNotFoundError(id)
		}
		span.RecordError(err)
		return 0, fmt.Errorf("failed to look up todo: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM todos WHERE id = ?`), id); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}

	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		todo      domain.Todo
		createdAt timestamp
	)
	if err := row.Scan(&todo.ID, &todo.Title, &todo.Completed, &createdAt); err != nil {
		return domain.Todo{}, err
	}
	todo.CreatedAt = createdAt.Time
	return todo, nil
}
