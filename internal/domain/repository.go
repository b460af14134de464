package domain

import "context"

// Repository defines the contract for todo persistence
type Repository interface {
	// List returns every todo, newest first
	List(ctx context.Context) ([]Todo, error)

	// Add persists a new todo and returns it with its id and creation time
	Add(ctx context.Context, title string) (Todo, error)

	// Toggle flips the completed flag and returns the updated todo.
	// Returns *NotFoundError if the id is absent.
	Toggle(ctx context.Context, id int64) (Todo, error)

	// Delete removes a todo and returns its id.
	// Returns *NotFoundError if the id is absent.
	Delete(ctx context.Context, id int64) (int64, error)
}
