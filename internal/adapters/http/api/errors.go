package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/tribureau/internal/app"
	"github.com/okian/tribureau/internal/domain/aggregation"
	"github.com/okian/tribureau/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = service.ErrBackpressure
	ErrInternal     = errors.New("internal error")
)

// Error is an operation-scoped API error. Kind classifies it for status
// mapping; Err carries the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// message is the client-facing text: the cause if any, else the kind.
func (e *Error) message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Op
}

// NewKind creates an error of the given kind.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind wraps err and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap wraps err, leaving its classification to the cause.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// errorStatus maps an error to an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownUser):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, service.ErrNoReport):
		return http.StatusNotFound, "no_report"
	case errors.Is(err, service.ErrReportUnavailable):
		return http.StatusNotFound, "source_unavailable"
	case errors.Is(err, model.ErrUnknownSource):
		return http.StatusBadRequest, "unknown_source"
	case errors.Is(err, aggregation.ErrMissingWeights),
		errors.Is(err, aggregation.ErrInvalidWeights):
		return http.StatusBadRequest, "invalid_weights"
	case errors.Is(err, aggregation.ErrUnknownMethod):
		return http.StatusBadRequest, "unknown_method"
	case errors.Is(err, model.ErrInvalidUser),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, aggregation.ErrNoUsableData):
		return http.StatusUnprocessableEntity, "no_usable_data"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
