package api

import (
	"errors"
	"net/http"

	"github.com/okian/carwise/internal/adapters/mq/queue"
	"github.com/okian/carwise/internal/adapters/repository"
	"github.com/okian/carwise/internal/adapters/upstream"
	"github.com/okian/carwise/internal/domain/diagnosis"
	"github.com/okian/carwise/internal/domain/model"
	"github.com/okian/carwise/internal/domain/vehicle"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBackpressure = errors.New("backpressure")
	ErrUpstream     = errors.New("upstream failure")
	ErrUnavailable  = errors.New("service unavailable")
	ErrInternal     = errors.New("internal error")
)

// Error carries the operation that failed and the kind used to pick the
// HTTP status.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind creates an error of kind without a cause.
func NewKind(op string, kind error) *Error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind wraps err with an explicit kind.
func WrapKind(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap wraps err and derives the kind from the domain error it carries.
func Wrap(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, vehicle.ErrInvalidDescriptor),
		errors.Is(err, model.ErrInvalidRepairRequest),
		errors.Is(err, diagnosis.ErrInvalidRequest):
		return ErrBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrQueueClosed):
		return ErrBackpressure
	case errors.Is(err, upstream.ErrUpstreamUnavailable),
		errors.Is(err, upstream.ErrUpstreamStatus),
		errors.Is(err, upstream.ErrInvalidResponse):
		return ErrUpstream
	case errors.Is(err, repository.ErrStoreClosed):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// status maps an error kind to the HTTP status and error code.
func status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fieldErrors extracts per-field validation details, if any.
func fieldErrors(err error) []vehicle.FieldError {
	var ve *vehicle.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var re *model.RequestValidationError
	if errors.As(err, &re) {
		return re.Fields
	}
	return nil
}
