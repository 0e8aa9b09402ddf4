package worker

import (
	"github.com/okian/tribureau/internal/domain/dedupe"
	"github.com/okian/tribureau/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithName sets the pool name used as worker name prefix in logs.
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDeduper releases each job's dedupe key once the job has been handled.
func WithDeduper(d dedupe.Deduper) Option {
	return func(p *Pool) {
		p.deduper = d
	}
}
