package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record already exists")
	ErrInvalidRecord = errors.New("invalid record")
)

func wrapInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, msg)
}
