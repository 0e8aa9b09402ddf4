package aggregation

import (
	"errors"

	"github.com/okian/tribureau/internal/domain/model"
)

// Errors returned by the engine. Source unavailability is never an error;
// these describe structural problems with the input.
var (
	ErrNoUsableData    = errors.New("no usable data")
	ErrUnknownMethod   = model.ErrUnknownMethod
	ErrMissingWeights  = errors.New("custom method requires weights")
	ErrInvalidWeights  = errors.New("invalid weights")
	ErrDuplicateSource = errors.New("duplicate source reading")
)
