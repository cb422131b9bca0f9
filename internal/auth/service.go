package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosuda/backoffice/internal/domain"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials") //nolint:gochecknoglobals // sentinel error

// UserSource lists the users of the organization carried by ctx.
type UserSource interface {
	Users(ctx context.Context) ([]domain.User, error)
}

// Service authenticates portal users against their organization's Users
// collection.
type Service struct {
	users UserSource
}

// NewService creates a new auth service.
func NewService(users UserSource) *Service {
	return &Service{users: users}
}

// Authenticate returns the user matching email (case-insensitive) whose
// password verifies.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	users, err := s.users.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.Authenticate: %w", err)
	}

	for i := range users {
		u := users[i]
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if !VerifyPassword(password, u.PasswordHash) {
			return nil, fmt.Errorf("auth.Authenticate: %w", ErrInvalidCredentials)
		}
		return &u, nil
	}

	return nil, fmt.Errorf("auth.Authenticate: %w", ErrInvalidCredentials)
}
