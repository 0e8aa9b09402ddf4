package fetch

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/tribureau/pkg/logger"
)

// Default orchestrator settings.
const (
	defaultTimeout = 2 * time.Second
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds every adapter call.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock replaces the capture-time clock.
func WithClock(c *Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithIDGenerator replaces the reading id generator.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func defaultID() string { return uuid.NewString() }
