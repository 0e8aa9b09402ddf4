package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/pkg/metrics"
)

// MemoryStore keeps every record in process memory.
type MemoryStore struct {
	settings

	mu       sync.RWMutex
	readings map[string][]model.Reading          // user id -> readings, append order
	results  map[string][]model.AggregatedResult // user id -> results, append order
	ids      map[string]struct{}                 // reading and result ids
	users    map[string]model.User
	emails   map[string]string // lower-cased email -> user id
	keys     map[string]string // correlation key -> user id

	gauges *gaugeUpdater
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		settings: defaultSettings(),
		readings: make(map[string][]model.Reading),
		results:  make(map[string][]model.AggregatedResult),
		ids:      make(map[string]struct{}),
		users:    make(map[string]model.User),
		emails:   make(map[string]string),
		keys:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	s.gauges = startGaugeUpdater(s.gaugeTick, s)
	return s
}

// Close stops the background gauge updater.
func (s *MemoryStore) Close() error {
	s.gauges.stop()
	return nil
}

func observe(store, op string, start time.Time) {
	metrics.RecordStoreLatency(store, op, float64(time.Since(start).Microseconds())/1000)
}

// SaveReading appends a reading.
func (s *MemoryStore) SaveReading(_ context.Context, r model.Reading) (string, error) {
	defer observe("readings", "save", time.Now())
	if err := validateReading(r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = s.newID()
	}
	if _, dup := s.ids[r.ID]; dup {
		return "", fmt.Errorf("%w: reading %s", ErrConflict, r.ID)
	}
	s.ids[r.ID] = struct{}{}
	s.readings[r.UserID] = append(s.readings[r.UserID], cloneReading(r))
	return r.ID, nil
}

// LatestPerSource resolves the newest reading independently for each source.
func (s *MemoryStore) LatestPerSource(_ context.Context, userID string) (map[model.Source]model.Reading, error) {
	defer observe("readings", "latest_per_source", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[model.Source]model.Reading, len(model.Sources()))
	for _, r := range s.readings[userID] {
		if cur, ok := latest[r.Source]; !ok || !r.CapturedAt.Before(cur.CapturedAt) {
			latest[r.Source] = r
		}
	}
	for src, r := range latest {
		latest[src] = cloneReading(r)
	}
	return latest, nil
}

// LatestForSource returns the newest reading of one source.
func (s *MemoryStore) LatestForSource(ctx context.Context, userID string, src model.Source) (model.Reading, error) {
	latest, err := s.LatestPerSource(ctx, userID)
	if err != nil {
		return model.Reading{}, err
	}
	r, ok := latest[src]
	if !ok {
		return model.Reading{}, fmt.Errorf("%w: no %s reading for user %s", ErrNotFound, src, userID)
	}
	return r, nil
}

// ReadingHistory returns all readings of a user ordered by capture time.
func (s *MemoryStore) ReadingHistory(_ context.Context, userID string) ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Reading, 0, len(s.readings[userID]))
	for _, r := range s.readings[userID] {
		out = append(out, cloneReading(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}

// CountReadings returns the number of stored readings.
func (s *MemoryStore) CountReadings(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, rs := range s.readings {
		n += len(rs)
	}
	return int64(n), nil
}

// SaveResult appends an aggregated result.
func (s *MemoryStore) SaveResult(_ context.Context, res model.AggregatedResult) (string, error) {
	defer observe("results", "save", time.Now())
	if err := validateResult(res); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.ID == "" {
		res.ID = s.newID()
	}
	if _, dup := s.ids[res.ID]; dup {
		return "", fmt.Errorf("%w: result %s", ErrConflict, res.ID)
	}
	s.ids[res.ID] = struct{}{}
	s.results[res.UserID] = append(s.results[res.UserID], cloneResult(res))
	return res.ID, nil
}

// LatestResult returns the result with the greatest computation time.
func (s *MemoryStore) LatestResult(_ context.Context, userID string) (model.AggregatedResult, error) {
	defer observe("results", "latest", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.results[userID]
	if len(history) == 0 {
		return model.AggregatedResult{}, fmt.Errorf("%w: no result for user %s", ErrNotFound, userID)
	}
	best := history[0]
	for _, res := range history[1:] {
		if !res.ComputedAt.Before(best.ComputedAt) {
			best = res
		}
	}
	return cloneResult(best), nil
}

// ResultHistory returns all results of a user ordered by computation time.
func (s *MemoryStore) ResultHistory(_ context.Context, userID string) ([]model.AggregatedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AggregatedResult, 0, len(s.results[userID]))
	for _, res := range s.results[userID] {
		out = append(out, cloneResult(res))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ComputedAt.Before(out[j].ComputedAt) })
	return out, nil
}

// CountResults returns the number of stored results.
func (s *MemoryStore) CountResults(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, rs := range s.results {
		n += len(rs)
	}
	return int64(n), nil
}

// CreateUser registers a new user.
func (s *MemoryStore) CreateUser(_ context.Context, u model.User) (model.User, error) {
	defer observe("users", "create", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.newID()
	}
	email := strings.ToLower(u.Email)
	if _, ok := s.users[u.ID]; ok {
		return model.User{}, fmt.Errorf("%w: user %s", ErrConflict, u.ID)
	}
	if _, ok := s.emails[email]; ok {
		return model.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if _, ok := s.keys[u.CorrelationKey]; ok {
		return model.User{}, fmt.Errorf("%w: correlation key already registered", ErrConflict)
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	s.emails[email] = u.ID
	s.keys[u.CorrelationKey] = u.ID
	return u, nil
}

// GetUser returns a user by id.
func (s *MemoryStore) GetUser(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, nil
}

// ListUsers returns every user ordered by creation time.
func (s *MemoryStore) ListUsers(context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateUser updates names and email of an existing user.
func (s *MemoryStore) UpdateUser(_ context.Context, u model.User) (model.User, error) {
	defer observe("users", "update", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %s", ErrNotFound, u.ID)
	}
	oldEmail, newEmail := strings.ToLower(cur.Email), strings.ToLower(u.Email)
	if owner, taken := s.emails[newEmail]; taken && owner != u.ID {
		return model.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	delete(s.emails, oldEmail)
	s.emails[newEmail] = u.ID

	cur.FirstName, cur.LastName, cur.Email = u.FirstName, u.LastName, u.Email
	cur.UpdatedAt = s.now()
	s.users[u.ID] = cur
	return cur, nil
}

// CountUsers returns the number of users.
func (s *MemoryStore) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
