package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownMethod = errors.New("unknown aggregation method")
	ErrInvalidUser   = errors.New("invalid user")
)
