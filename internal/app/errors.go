package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/tribureau/internal/adapters/repository"
	"github.com/okian/tribureau/internal/domain/fetch"
	"github.com/okian/tribureau/internal/domain/model"
)

// Service errors. Domain and store errors pass through wrapped so callers
// can match them with errors.Is.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrStopped           = errors.New("service stopped")
	ErrBackpressure      = errors.New("refresh backpressure")
	ErrNoReport          = errors.New("no report recorded for source")
	ErrReportUnavailable = errors.New("source report unavailable")

	ErrUnknownUser = fetch.ErrUnknownUser
	ErrConflict    = repository.ErrConflict
)

// UnavailableError is returned when the latest reading of a source is a
// recorded failure. It matches ErrReportUnavailable.
type UnavailableError struct {
	Source     model.Source
	Reason     string
	CapturedAt time.Time
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrReportUnavailable, e.Source, e.Reason)
}

// Unwrap lets errors.Is match ErrReportUnavailable.
func (e *UnavailableError) Unwrap() error { return ErrReportUnavailable }
