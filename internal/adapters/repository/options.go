package repository

import (
	"time"

	"github.com/google/uuid"
)

// settings are shared by every store implementation.
type settings struct {
	newID     func() string
	now       func() time.Time
	debugSQL  bool
	gaugeTick time.Duration
}

func defaultSettings() settings {
	return settings{
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
		gaugeTick: 0,
	}
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithIDGenerator replaces the id generator used for records saved without
// an id.
func WithIDGenerator(gen func() string) Option {
	return func(s *settings) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock replaces the clock used for user timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSQLDebug logs every SQL statement.
func WithSQLDebug(enabled bool) Option {
	return func(s *settings) {
		s.debugSQL = enabled
	}
}

// WithMetricsUpdateInterval publishes store size gauges periodically.
// Zero disables the background updater.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *settings) {
		if interval > 0 {
			s.gaugeTick = interval
		}
	}
}
