// Package apperror defines the error taxonomy shared by every layer.
//
// Each AppError carries a sentinel (Err) that callers test with errors.Is, a
// human-readable Message that is safe to show to clients, and optionally the
// underlying Cause kept for diagnostics only.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrInvalidDateTime = errors.New("invalid date-time")
	ErrInconsistent    = errors.New("inconsistent data")
	ErrInvalidUsage    = errors.New("invalid usage")
)

// Messages returned to clients. They match the wording existing API consumers
// already see.
const (
	MsgBirdNotFound     = "Bird not found!"
	MsgSightingNotFound = "Sighting not found!"
	MsgNullParameter    = "Method doesn't accept null parameters!"
	MsgOrphanRecords    = "Orphan sightings record detected!"
	MsgInvalidDateTime  = "Invalid dateTime provided!"
)

type AppError struct {
	Err     error  // sentinel
	Cause   error  // Optional: underlying failure, never shown to clients
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// either of them.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func BirdNotFound() *AppError {
	return NotFound(MsgBirdNotFound)
}

func SightingNotFound() *AppError {
	return NotFound(MsgSightingNotFound)
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidDateTime reports caller-supplied date-time text that could not be
// parsed. The parse failure is retained as the cause.
func InvalidDateTime(cause error) *AppError {
	return &AppError{
		Err:     ErrInvalidDateTime,
		Cause:   cause,
		Message: MsgInvalidDateTime,
		Field:   "dateTime",
	}
}

// Inconsistent signals store-level corruption: a sighting whose bird reference
// resolves to nothing in the batch it was checked against.
func Inconsistent(sightingID, birdID string) *AppError {
	return &AppError{
		Err:     ErrInconsistent,
		Cause:   fmt.Errorf("sighting %s references missing bird %s", sightingID, birdID),
		Message: MsgOrphanRecords,
	}
}

// InvalidUsage reports a programming-contract violation, such as a required
// argument being absent.
func InvalidUsage() *AppError {
	return &AppError{
		Err:     ErrInvalidUsage,
		Message: MsgNullParameter,
	}
}
