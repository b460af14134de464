package app

import (
	"context"
	"errors"

	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/dmehra2102/todorpc/pkg/auth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TodoService sits between the RPC contract and one storage backend. Every
// error it returns is a domain.Error and every todo it returns has passed
// domain.Todo.Validate.
type TodoService struct {
	repo   domain.Repository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewTodoService(repo domain.Repository, logger *zap.Logger) *TodoService {
	return &TodoService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("todo-service"),
	}
}

// GetTodos returns all todos, newest first.
func (s *TodoService) GetTodos(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := s.tracer.Start(ctx, "TodoService.GetTodos")
	defer span.End()

	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "list todos", err)
	}

	for _, todo := range todos {
		if err := todo.Validate(); err != nil {
			return nil, s.fail(ctx, span, "decode todos", err)
		}
	}

	span.SetAttributes(attribute.Int("returned_count", len(todos)))
	return todos, nil
}

func (s *TodoService) AddTodo(ctx context.Context, title string) (domain.Todo, error) {
	ctx, span := s.tracer.Start(ctx, "TodoService.AddTodo")
	defer span.End()

	if err := domain.ValidateTitle(title); err != nil {
		return domain.Todo{}, s.fail(ctx, span, "validate title", err)
	}

	todo, err := s.repo.Add(ctx, title)
	if err != nil {
		return domain.Todo{}, s.fail(ctx, span, "create todo", err)
	}
	if err := todo.Validate(); err != nil {
		return domain.Todo{}, s.fail(ctx, span, "decode todo", err)
	}

	span.SetAttributes(attribute.Int64("todo.id", todo.ID))
	s.logger.Info("todo created",
		zap.Int64("todo_id", todo.ID),
		zap.String("user_id", userID(ctx)),
	)
	return todo, nil
}

func (s *TodoService) ToggleTodo(ctx context.Context, id int64) (domain.Todo, error) {
	ctx, span := s.tracer.Start(ctx, "TodoService.ToggleTodo")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	todo, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return domain.Todo{}, s.fail(ctx, span, "toggle todo", err)
	}
	if err := todo.Validate(); err != nil {
		return domain.Todo{}, s.fail(ctx, span, "decode todo", err)
	}

	s.logger.Info("todo toggled",
		zap.Int64("todo_id", todo.ID),
		zap.Bool("completed", todo.Completed),
		zap.String("user_id", userID(ctx)),
	)
	return todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "TodoService.DeleteTodo")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, s.fail(ctx, span, "delete todo", err)
	}
	if err := domain.ValidateID(deleted); err != nil {
		return 0, s.fail(ctx, span, "decode deleted id", err)
	}

	s.logger.Info("todo deleted",
		zap.Int64("todo_id", deleted),
		zap.String("user_id", userID(ctx)),
	)
	return deleted, nil
}

// fail folds err into the error union. Storage faults are logged here since
// the caller only gets their message back.
func (s *TodoService) fail(ctx context.Context, span trace.Span, op string, err error) error {
	typed := domain.AsError(err)

	var unknown *domain.UnknownError
	if errors.As(typed, &unknown) {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		s.logger.Error("failed to "+op,
			zap.Error(err),
			zap.String("user_id", userID(ctx)),
		)
	} else {
		span.SetAttributes(attribute.String("error.tag", typed.Tag()))
	}

	return typed
}

func userID(ctx context.Context) string {
	userCtx, err := auth.UserContextFromContext(ctx)
	if err != nil {
		return ""
	}
	return userCtx.UserID
}
