package domain

import (
	"fmt"
	"strings"
	"time"
)

type Todo struct {
	ID        int64
	Title     string
	Completed bool
	CreatedAt time.Time
}

// Toggled returns a copy with Completed flipped. Every other field is left as is.
func (t Todo) Toggled() Todo {
	t.Completed = !t.Completed
	return t
}

// Validate checks a decoded record against the Todo schema.
func (t Todo) Validate() error {
	if t.ID < 0 {
		return NewValidationError(fmt.Sprintf("invalid todo id %d", t.ID))
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		return NewValidationError(fmt.Sprintf("todo %d has no creation time", t.ID))
	}
	return nil
}

// ValidateTitle enforces the title constraint shared by input and stored rows.
// Titles are otherwise free text of any length.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError(ErrEmptyTitle.Error())
	}
	return nil
}

// ValidateID rejects ids no backend can ever issue. It checks results only:
// a negative id in a request is simply never found.
func ValidateID(id int64) error {
	if id < 0 {
		return NewValidationError(fmt.Sprintf("%s: %d", ErrInvalidID, id))
	}
	return nil
}
