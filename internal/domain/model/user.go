package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var correlationKeyPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)

// User is the minimal account record the core reads. CorrelationKey stands
// in for the sensitive bureau lookup value and is never serialized.
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	CorrelationKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName returns "First Last".
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate checks required fields and the correlation key format.
func (u User) Validate() error {
	switch {
	case strings.TrimSpace(u.FirstName) == "":
		return fmt.Errorf("%w: missing first_name", ErrInvalidUser)
	case strings.TrimSpace(u.LastName) == "":
		return fmt.Errorf("%w: missing last_name", ErrInvalidUser)
	case !strings.Contains(u.Email, "@"):
		return fmt.Errorf("%w: invalid email", ErrInvalidUser)
	case !correlationKeyPattern.MatchString(u.CorrelationKey):
		return fmt.Errorf("%w: correlation key must match NNN-NN-NNNN", ErrInvalidUser)
	}
	return nil
}
