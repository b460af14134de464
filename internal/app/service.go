package app

import (
	"context"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
)

// TodoServiceServer exposes TodoService over gRPC. Requests are validated
// against the contract before reaching the service, and every error leaves
// as a status carrying its union variant.
type TodoServiceServer struct {
	todov1.UnimplementedTodoServiceServer
	todos *TodoService
}

func NewTodoServiceServer(todos *TodoService) *TodoServiceServer {
	return &TodoServiceServer{todos: todos}
}

func (s *TodoServiceServer) GetTodos(ctx context.Context, _ *todov1.GetTodosRequest) (*todov1.GetTodosResponse, error) {
	todos, err := s.todos.GetTodos(ctx)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &todov1.GetTodosResponse{Todos: todov1.NewTodos(todos)}, nil
}

func (s *TodoServiceServer) AddTodo(ctx context.Context, req *todov1.AddTodoRequest) (*todov1.AddTodoResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, mapDomainError(err)
	}

	todo, err := s.todos.AddTodo(ctx, req.Title)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &todov1.AddTodoResponse{Todo: todov1.NewTodo(todo)}, nil
}

func (s *TodoServiceServer) ToggleTodo(ctx context.Context, req *todov1.ToggleTodoRequest) (*todov1.ToggleTodoResponse, error) {
	todo, err := s.todos.ToggleTodo(ctx, req.ID)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &todov1.ToggleTodoResponse{Todo: todov1.NewTodo(todo)}, nil
}

func (s *TodoServiceServer) DeleteTodo(ctx context.Context, req *todov1.DeleteTodoRequest) (*todov1.DeleteTodoResponse, error) {
	id, err := s.todos.DeleteTodo(ctx, req.ID)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return &todov1.DeleteTodoResponse{ID: id}, nil
}

func mapDomainError(err error) error {
	return todov1.Status(err)
}
