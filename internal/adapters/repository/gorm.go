package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/pkg/metrics"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLStore persists records through gorm.
type SQLStore struct {
	settings
	db     *gorm.DB
	gauges *gaugeUpdater
}

// NewSQLiteStore opens (or creates) a SQLite database at path and migrates
// the schema.
func NewSQLiteStore(path string, opts ...Option) (*SQLStore, error) {
	st := defaultSettings()
	for _, opt := range opts {
		opt(&st)
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(st))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	return newSQLStore(db, st)
}

// NewGormStore wraps an already opened gorm connection.
func NewGormStore(db *gorm.DB, opts ...Option) (*SQLStore, error) {
	st := defaultSettings()
	for _, opt := range opts {
		opt(&st)
	}
	return newSQLStore(db, st)
}

func gormConfig(st settings) *gorm.Config {
	level := gormlogger.Silent
	if st.debugSQL {
		level = gormlogger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
		NowFunc:        st.now,
	}
}

func newSQLStore(db *gorm.DB, st settings) (*SQLStore, error) {
	if err := db.AutoMigrate(&userRow{}, &readingRow{}, &resultRow{}, &componentRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	s := &SQLStore{settings: st, db: db}
	s.gauges = startGaugeUpdater(st.gaugeTick, s)
	return s, nil
}

// Close stops background work and closes the connection pool.
func (s *SQLStore) Close() error {
	s.gauges.stop()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLStore) fail(store, op string, err error) error {
	metrics.RecordStoreError(store, op)
	return fmt.Errorf("%s %s: %w", store, op, err)
}

// SaveReading appends a reading.
func (s *SQLStore) SaveReading(ctx context.Context, r model.Reading) (string, error) {
	defer observe("readings", "save", time.Now())
	if err := validateReading(r); err != nil {
		return "", err
	}
	if r.ID == "" {
		r.ID = s.newID()
	}
	row, err := toReadingRow(r)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: reading %s", ErrConflict, r.ID)
		}
		return "", s.fail("readings", "save", err)
	}
	return r.ID, nil
}

// LatestPerSource runs one indexed query per source so a recent failure of
// one source never hides an older success of another.
func (s *SQLStore) LatestPerSource(ctx context.Context, userID string) (map[model.Source]model.Reading, error) {
	defer observe("readings", "latest_per_source", time.Now())
	latest := make(map[model.Source]model.Reading, len(model.Sources()))
	for _, src := range model.Sources() {
		r, err := s.latestForSource(ctx, userID, src)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		latest[src] = r
	}
	return latest, nil
}

// LatestForSource returns the newest reading of one source.
func (s *SQLStore) LatestForSource(ctx context.Context, userID string, src model.Source) (model.Reading, error) {
	defer observe("readings", "latest_for_source", time.Now())
	return s.latestForSource(ctx, userID, src)
}

func (s *SQLStore) latestForSource(ctx context.Context, userID string, src model.Source) (model.Reading, error) {
	var row readingRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND source = ?", userID, string(src)).
		Order("captured_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reading{}, fmt.Errorf("%w: no %s reading for user %s", ErrNotFound, src, userID)
	}
	if err != nil {
		return model.Reading{}, s.fail("readings", "latest", err)
	}
	return row.toModel()
}

// ReadingHistory returns all readings of a user ordered by capture time.
func (s *SQLStore) ReadingHistory(ctx context.Context, userID string) ([]model.Reading, error) {
	var rows []readingRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("captured_at ASC").Find(&rows).Error; err != nil {
		return nil, s.fail("readings", "history", err)
	}
	out := make([]model.Reading, 0, len(rows))
	for _, row := range rows {
		r, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// CountReadings returns the number of stored readings.
func (s *SQLStore) CountReadings(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&readingRow{}).Count(&n).Error; err != nil {
		return 0, s.fail("readings", "count", err)
	}
	return n, nil
}

// SaveResult appends an aggregated result and its components.
func (s *SQLStore) SaveResult(ctx context.Context, res model.AggregatedResult) (string, error) {
	defer observe("results", "save", time.Now())
	if err := validateResult(res); err != nil {
		return "", err
	}
	if res.ID == "" {
		res.ID = s.newID()
	}
	row, err := toResultRow(res)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: result %s", ErrConflict, res.ID)
		}
		return "", s.fail("results", "save", err)
	}
	return res.ID, nil
}

func orderedComponents(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// LatestResult returns the result with the greatest computation time.
func (s *SQLStore) LatestResult(ctx context.Context, userID string) (model.AggregatedResult, error) {
	defer observe("results", "latest", time.Now())
	var row resultRow
	err := s.db.WithContext(ctx).
		Preload("Components", orderedComponents).
		Where("user_id = ?", userID).
		Order("computed_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AggregatedResult{}, fmt.Errorf("%w: no result for user %s", ErrNotFound, userID)
	}
	if err != nil {
		return model.AggregatedResult{}, s.fail("results", "latest", err)
	}
	return row.toModel()
}

// ResultHistory returns all results of a user ordered by computation time.
func (s *SQLStore) ResultHistory(ctx context.Context, userID string) ([]model.AggregatedResult, error) {
	var rows []resultRow
	err := s.db.WithContext(ctx).
		Preload("Components", orderedComponents).
		Where("user_id = ?", userID).
		Order("computed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, s.fail("results", "history", err)
	}
	out := make([]model.AggregatedResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// CountResults returns the number of stored results.
func (s *SQLStore) CountResults(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&resultRow{}).Count(&n).Error; err != nil {
		return 0, s.fail("results", "count", err)
	}
	return n, nil
}

// CreateUser registers a new user.
func (s *SQLStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	defer observe("users", "create", time.Now())
	if u.ID == "" {
		u.ID = s.newID()
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	row := toUserRow(u)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&userRow{}).
			Where("id = ? OR lower(email) = lower(?) OR correlation_key = ?", u.ID, u.Email, u.CorrelationKey).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		return tx.Create(&row).Error
	})
	switch {
	case errors.Is(err, ErrConflict), err != nil && isUniqueViolation(err):
		return model.User{}, fmt.Errorf("%w: user, email or correlation key already registered", ErrConflict)
	case err != nil:
		return model.User{}, s.fail("users", "create", err)
	}
	return row.toModel(), nil
}

// GetUser returns a user by id.
func (s *SQLStore) GetUser(ctx context.Context, id string) (model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if err != nil {
		return model.User{}, s.fail("users", "get", err)
	}
	return row.toModel(), nil
}

// ListUsers returns every user ordered by creation time.
func (s *SQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, s.fail("users", "list", err)
	}
	out := make([]model.User, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

// UpdateUser updates names and email of an existing user.
func (s *SQLStore) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	defer observe("users", "update", time.Now())
	var updated userRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", u.ID).Take(&updated).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&userRow{}).Where("lower(email) = lower(?) AND id <> ?", u.Email, u.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		updated.FirstName, updated.LastName, updated.Email = u.FirstName, u.LastName, u.Email
		updated.UpdatedAt = s.now().UTC()
		return tx.Model(&userRow{}).Where("id = ?", u.ID).Updates(map[string]any{
			"first_name": updated.FirstName,
			"last_name":  updated.LastName,
			"email":      updated.Email,
			"updated_at": updated.UpdatedAt,
		}).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, fmt.Errorf("%w: user %s", ErrNotFound, u.ID)
	case errors.Is(err, ErrConflict), err != nil && isUniqueViolation(err):
		return model.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	case err != nil:
		return model.User{}, s.fail("users", "update", err)
	}
	return updated.toModel(), nil
}

// CountUsers returns the number of users.
func (s *SQLStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, s.fail("users", "count", err)
	}
	return n, nil
}
