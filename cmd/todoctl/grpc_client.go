package main

import (
	"context"

	todov1 "github.com/dmehra2102/todorpc/api/proto/v1"
	"github.com/dmehra2102/todorpc/internal/domain"
	"google.golang.org/grpc/metadata"
)

// grpcClient adapts the generated-style client to cli.Client.
type grpcClient struct {
	client todov1.TodoServiceClient
	token  string
}

func (c *grpcClient) ctx(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *grpcClient) GetTodos(ctx context.Context) ([]domain.Todo, error) {
	resp, err := c.client.GetTodos(c.ctx(ctx), &todov1.GetTodosRequest{})
	if err != nil {
		return nil, err
	}
	todos := make([]domain.Todo, len(resp.Todos))
	for i, todo := range resp.Todos {
		todos[i] = todo.Domain()
	}
	return todos, nil
}

func (c *grpcClient) AddTodo(ctx context.Context, title string) (domain.Todo, error) {
	resp, err := c.client.AddTodo(c.ctx(ctx), &todov1.AddTodoRequest{Title: title})
	if err != nil {
		return domain.Todo{}, err
	}
	return resp.Todo.Domain(), nil
}

func (c *grpcClient) ToggleTodo(ctx context.Context, id int64) (domain.Todo, error) {
	resp, err := c.client.ToggleTodo(c.ctx(ctx), &todov1.ToggleTodoRequest{ID: id})
	if err != nil {
		return domain.Todo{}, err
	}
	return resp.Todo.Domain(), nil
}

func (c *grpcClient) DeleteTodo(ctx context.Context, id int64) (int64, error) {
	resp, err := c.client.DeleteTodo(c.ctx(ctx), &todov1.DeleteTodoRequest{ID: id})
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}
