package vehicle

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidDescriptor is the kind carried by every descriptor validation failure.
var ErrInvalidDescriptor = errors.New("invalid vehicle descriptor")

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return ErrInvalidDescriptor.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrInvalidDescriptor.
func (e *ValidationError) Unwrap() error { return ErrInvalidDescriptor }

func yearRangeMessage(maxYear int) string {
	return "must be between " + strconv.Itoa(MinModelYear) + " and " + strconv.Itoa(maxYear)
}

func quote(s string) string { return strconv.Quote(s) }
