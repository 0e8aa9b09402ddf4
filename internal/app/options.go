package service

import (
	"time"

	"github.com/okian/tribureau/internal/adapters/repository"
	"github.com/okian/tribureau/internal/domain/bureau"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAdapters sets the bureau adapters, one per source.
func WithAdapters(adapters ...bureau.Adapter) Option {
	return func(s *Service) {
		if len(adapters) > 0 {
			s.adapters = adapters
		}
	}
}

// WithFetchTimeout bounds every bureau call.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithDefaultMethod sets the method used when a request names none and by
// background refreshes.
func WithDefaultMethod(m model.Method) Option {
	return func(s *Service) {
		if m.Valid() && m != model.MethodCustom {
			s.defaultMethod = m
		}
	}
}

// WithDefaultWeights replaces the weight table of the weighted method.
func WithDefaultWeights(weights map[model.Source]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.defaultWeights = weights
		}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize caps the number of tracked pending refreshes.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock replaces the wall clock. Capture and computation stamps stay
// strictly increasing on top of it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the generator for user, result and job ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
