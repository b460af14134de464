package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"plain", "write tests", false},
		{"empty", "", true},
		{"blank", "   \t", true},
		{"long ascii", strings.Repeat("a", 1000), false},
		{"multibyte", strings.Repeat("日", 70), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
			if err != nil {
				var v *ValidationError
				if !errors.As(err, &v) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestTodoValidate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	valid := Todo{ID: 0, Title: "ok", CreatedAt: now}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid todo, got %v", err)
	}

	for name, todo := range map[string]Todo{
		"negative id":  {ID: -1, Title: "ok", CreatedAt: now},
		"empty title":  {ID: 1, Title: "", CreatedAt: now},
		"missing time": {ID: 1, Title: "ok"},
	} {
		if err := todo.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestToggledLeavesOtherFieldsAlone(t *testing.T) {
	now := time.Now().UTC()
	todo := Todo{ID: 7, Title: "flip", CreatedAt: now}

	once := todo.Toggled()
	if !once.Completed || once.ID != 7 || once.Title != "flip" || !once.CreatedAt.Equal(now) {
		t.Fatalf("unexpected toggle result: %+v", once)
	}
	if todo.Completed {
		t.Fatal("Toggled must not mutate the receiver")
	}
	if once.Toggled() != todo {
		t.Fatal("toggling twice should restore the original")
	}
}

func TestAsError(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", NewNotFoundError(3))

	tests := []struct {
		name string
		err  error
		tag  string
	}{
		{"not found through wrap", wrapped, TagNotFound},
		{"validation", NewValidationError("bad"), TagValidation},
		{"unknown", NewUnknownError("disk"), TagUnknown},
		{"foreign error", errors.New("database is locked"), TagUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsError(tt.err)
			if got.Tag() != tt.tag {
				t.Fatalf("tag = %s, want %s", got.Tag(), tt.tag)
			}
		})
	}

	if AsError(nil) != nil {
		t.Fatal("AsError(nil) should be nil")
	}

	var notFound *NotFoundError
	if !errors.As(AsError(wrapped), &notFound) || notFound.ID != 3 {
		t.Fatalf("expected NotFound(3), got %v", AsError(wrapped))
	}

	if msg := AsError(errors.New("database is locked")).(*UnknownError).Message; msg != "database is locked" {
		t.Fatalf("unknown error lost its message: %q", msg)
	}
}
