package model

import (
	"errors"
	"strings"

	"github.com/okian/carwise/internal/domain/vehicle"
)

// ErrInvalidRepairRequest is wrapped by RequestValidationError.
var ErrInvalidRepairRequest = errors.New("invalid repair request")

// RequestValidationError lists every invalid field of a repair request.
type RequestValidationError struct {
	Fields []vehicle.FieldError `json:"fields"`
}

func (e *RequestValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return ErrInvalidRepairRequest.Error() + ": " + strings.Join(parts, "; ")
}

func (e *RequestValidationError) Unwrap() error { return ErrInvalidRepairRequest }
