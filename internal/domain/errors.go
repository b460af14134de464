package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation Errors
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrInvalidID  = errors.New("todo ID must not be negative")
)

// Error tags shared by every transport.
const (
	TagNotFound   = "TodoNotFoundError"
	TagValidation = "TodoValidationError"
	TagUnknown    = "UnknownTodoServiceError"
)

// Error is the closed set of failures a todo operation can report.
// Only NotFoundError, ValidationError and UnknownError implement it.
type Error interface {
	error
	Tag() string
	sealed()
}

type NotFoundError struct {
	ID int64
}

func NewNotFoundError(id int64) *NotFoundError {
	return &NotFoundError{ID: id}
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("todo not found: %d", e.ID) }
func (e *NotFoundError) Tag() string   { return TagNotFound }
func (e *NotFoundError) sealed()       {}

type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Message }
func (e *ValidationError) Tag() string   { return TagValidation }
func (e *ValidationError) sealed()       {}

type UnknownError struct {
	Message string
}

func NewUnknownError(message string) *UnknownError {
	if message == "" {
		message = "database operation failed"
	}
	return &UnknownError{Message: message}
}

func (e *UnknownError) Error() string { return "todo service error: " + e.Message }
func (e *UnknownError) Tag() string   { return TagUnknown }
func (e *UnknownError) sealed()       {}

// AsError classifies err into the union. Anything that is not already one of
// the three kinds becomes an UnknownError carrying err's message.
func AsError(err error) Error {
	if err == nil {
		return nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation
	}
	var unknown *UnknownError
	if errors.As(err, &unknown) {
		return unknown
	}
	return NewUnknownError(err.Error())
}
