package apperror

import (
	"errors"
	"testing"
	"time"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "BirdNotFound wraps ErrNotFound",
			err:       BirdNotFound(),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "SightingNotFound wraps ErrNotFound",
			err:       SightingNotFound(),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "InvalidDateTime wraps ErrInvalidDateTime",
			err:       InvalidDateTime(errors.New("bad")),
			target:    ErrInvalidDateTime,
			wantMatch: true,
		},
		{
			name:      "Inconsistent wraps ErrInconsistent",
			err:       Inconsistent("s1", "b1"),
			target:    ErrInconsistent,
			wantMatch: true,
		},
		{
			name:      "InvalidUsage wraps ErrInvalidUsage",
			err:       InvalidUsage(),
			target:    ErrInvalidUsage,
			wantMatch: true,
		},
		{
			name:      "Inconsistent does NOT match ErrNotFound",
			err:       Inconsistent("s1", "b1"),
			target:    ErrNotFound,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       BirdNotFound(),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "bird not found",
			err:         BirdNotFound(),
			wantMessage: "Bird not found!",
		},
		{
			name:        "sighting not found",
			err:         SightingNotFound(),
			wantMessage: "Sighting not found!",
		},
		{
			name:        "orphan records",
			err:         Inconsistent("s1", "b1"),
			wantMessage: "Orphan sightings record detected!",
		},
		{
			name:        "null parameter",
			err:         InvalidUsage(),
			wantMessage: "Method doesn't accept null parameters!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Message; got != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestInvalidDateTimeKeepsCause(t *testing.T) {
	_, parseErr := time.Parse("2006-01-02T15:04:05", "2023-07-18T10:00:aa")
	if parseErr == nil {
		t.Fatal("expected a parse error")
	}

	err := InvalidDateTime(parseErr)

	var timeErr *time.ParseError
	if !errors.As(err, &timeErr) {
		t.Errorf("errors.As(%v, *time.ParseError) = false, want true", err)
	}
	if !errors.Is(err, ErrInvalidDateTime) {
		t.Errorf("errors.Is(%v, ErrInvalidDateTime) = false, want true", err)
	}
	if err.Field != "dateTime" {
		t.Errorf("Field = %q, want %q", err.Field, "dateTime")
	}
}

func TestUnwrapWithoutCause(t *testing.T) {
	errs := BirdNotFound().Unwrap()
	if len(errs) != 1 || errs[0] != ErrNotFound {
		t.Errorf("Unwrap() = %v, want [%v]", errs, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("weight", "weight must not be negative")

	if err.Field != "weight" {
		t.Errorf("Field = %q, want %q", err.Field, "weight")
	}
	if err.Error() != "weight must not be negative" {
		t.Errorf("Error() = %q", err.Error())
	}
}
