package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/tribureau/internal/adapters/repository"
	"github.com/okian/tribureau/internal/domain/fetch"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/pkg/logger"
)

// UserUpdate carries the mutable user fields. Empty fields are left as is.
type UserUpdate struct {
	FirstName string
	LastName  string
	Email     string
}

// userDirectory resolves users for the fetch orchestrator.
type userDirectory struct {
	users repository.UserStore
}

func (d userDirectory) LookupUser(ctx context.Context, userID string) (model.User, error) {
	u, err := d.users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("%w: %s", fetch.ErrUnknownUser, userID)
	}
	return u, err
}

// lookup resolves a user or returns an ErrUnknownUser-wrapped error.
func (s *Service) lookup(ctx context.Context, userID string) (model.User, error) {
	return userDirectory{users: s.store}.LookupUser(ctx, userID)
}

// CreateUser validates and registers a user. The id is generated.
func (s *Service) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.ID = s.newID()
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CorrelationKey = strings.TrimSpace(u.CorrelationKey)
	if err := u.Validate(); err != nil {
		return model.User{}, err
	}

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info(ctx, "user created", logger.String("user_id", created.ID))
	return created, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.lookup(ctx, userID)
}

// ListUsers returns every user ordered by creation time.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser changes names and email. The correlation key cannot change.
func (s *Service) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (model.User, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if v := strings.TrimSpace(upd.FirstName); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(upd.LastName); v != "" {
		u.LastName = v
	}
	if v := strings.TrimSpace(upd.Email); v != "" {
		u.Email = strings.ToLower(v)
	}
	if err := u.Validate(); err != nil {
		return model.User{}, err
	}

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}
