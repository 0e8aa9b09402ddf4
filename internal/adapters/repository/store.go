// Package repository defines the append-only stores for readings,
// aggregated results and users, with in-memory and SQL implementations.
package repository

import (
	"context"

	"github.com/okian/tribureau/internal/domain/model"
)

// ReportStore persists source readings. Readings are never updated; the
// latest reading is resolved per source by capture time.
type ReportStore interface {
	// SaveReading appends r and returns its id. An empty id is generated.
	SaveReading(ctx context.Context, r model.Reading) (string, error)
	// LatestPerSource returns the newest reading of every source that has
	// one. Sources never fetched are absent from the map.
	LatestPerSource(ctx context.Context, userID string) (map[model.Source]model.Reading, error)
	// LatestForSource returns ErrNotFound when src was never fetched.
	LatestForSource(ctx context.Context, userID string, src model.Source) (model.Reading, error)
	// ReadingHistory returns every reading of a user, oldest first.
	ReadingHistory(ctx context.Context, userID string) ([]model.Reading, error)
	CountReadings(ctx context.Context) (int64, error)
}

// ResultStore persists aggregated results.
type ResultStore interface {
	// SaveResult appends res and returns its id. An empty id is generated.
	SaveResult(ctx context.Context, res model.AggregatedResult) (string, error)
	// LatestResult returns ErrNotFound when the user has no result.
	LatestResult(ctx context.Context, userID string) (model.AggregatedResult, error)
	// ResultHistory returns every result of a user, oldest first.
	ResultHistory(ctx context.Context, userID string) ([]model.AggregatedResult, error)
	CountResults(ctx context.Context) (int64, error)
}

// UserStore is the user directory.
type UserStore interface {
	// CreateUser returns ErrConflict when the email or correlation key is
	// already registered.
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpdateUser changes names and email. The correlation key is immutable.
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Store bundles every store behind one backend.
type Store interface {
	ReportStore
	ResultStore
	UserStore
	Close() error
}
