// Package todov1 is the wire contract of the todo service: message types,
// the error encoding shared by every transport, and the gRPC service
// descriptor with its client.
package todov1

import (
	"fmt"
	"time"

	"github.com/dmehra2102/todorpc/internal/domain"
)

// Contract operation names, used for dispatch on the socket transport.
const (
	OpGetTodos   = "getTodos"
	OpAddTodo    = "addTodo"
	OpToggleTodo = "toggleTodo"
	OpDeleteTodo = "deleteTodo"
)

type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetTodosRequest struct{}

type GetTodosResponse struct {
	Todos []*Todo `json:"todos"`
}

type AddTodoRequest struct {
	Title string `json:"title"`
}

type AddTodoResponse struct {
	Todo *Todo `json:"todo"`
}

type ToggleTodoRequest struct {
	ID int64 `json:"id"`
}

type ToggleTodoResponse struct {
	Todo *Todo `json:"todo"`
}

type DeleteTodoRequest struct {
	ID int64 `json:"id"`
}

type DeleteTodoResponse struct {
	ID int64 `json:"id"`
}

func NewTodo(todo domain.Todo) *Todo {
	return &Todo{
		ID:        todo.ID,
		Title:     todo.Title,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt.UTC(),
	}
}

func NewTodos(todos []domain.Todo) []*Todo {
	out := make([]*Todo, len(todos))
	for i, todo := range todos {
		out[i] = NewTodo(todo)
	}
	return out
}

func (t *Todo) Domain() domain.Todo {
	return domain.Todo{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func (t *Todo) Validate() error {
	if t == nil {
		return domain.NewValidationError("todo is missing")
	}
	return t.Domain().Validate()
}

func (r *AddTodoRequest) Validate() error {
	return domain.ValidateTitle(r.Title)
}

func (r *GetTodosResponse) Validate() error {
	for i, todo := range r.Todos {
		if err := todo.Validate(); err != nil {
			return domain.NewValidationError(fmt.Sprintf("todos[%d]: %s", i, message(err)))
		}
	}
	return nil
}

func (r *AddTodoResponse) Validate() error {
	return r.Todo.Validate()
}

func (r *ToggleTodoResponse) Validate() error {
	return r.Todo.Validate()
}

func (r *DeleteTodoResponse) Validate() error {
	return domain.ValidateID(r.ID)
}

func message(err error) string {
	if v, ok := err.(*domain.ValidationError); ok {
		return v.Message
	}
	return err.Error()
}
