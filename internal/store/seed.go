package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/internal/auth"
	"github.com/gosuda/backoffice/internal/domain"
	"github.com/gosuda/backoffice/internal/idgen"
)

type seedUser struct {
	email    string
	name     string
	role     domain.Role
	password string
}

// Demo credentials only.
var defaultUsers = []seedUser{ //nolint:gochecknoglobals // fixed seed data
	{email: "hr@flawless.local", name: "HR Admin", role: domain.RoleHR, password: "hrpass"},
	{email: "finance@flawless.local", name: "Finance", role: domain.RoleFinance, password: "finpass"},
	{email: "teacher@flawless.local", name: "Teacher", role: domain.RoleTeacher, password: "teachpass"},
}

// SeedDefaultUsers writes the HR, Finance and Teacher accounts to the active
// organization's Users collection when that key holds no value at all. Any
// existing value, even an empty or malformed one, leaves it untouched.
// It reports whether the users were written.
func (s *Store) SeedDefaultUsers(ctx context.Context) (bool, error) {
	key := s.Key(ctx, domain.CollectionUsers)

	seeded := false
	err := s.update(ctx, key, func(_ []byte, found bool) ([]byte, error) {
		seeded = false
		if found {
			return nil, nil
		}

		users := make([]domain.User, 0, len(defaultUsers))
		for _, su := range defaultUsers {
			hash, err := auth.HashPassword(su.password)
			if err != nil {
				return nil, err
			}
			users = append(users, domain.User{
				ID:           idgen.New("u"),
				Email:        su.email,
				Name:         su.name,
				Role:         su.role,
				PasswordHash: hash,
			})
		}

		seeded = true
		return json.Marshal(users)
	})
	if err != nil {
		return false, fmt.Errorf("store.SeedDefaultUsers: %w", err)
	}

	if seeded {
		log.Info().Str("org", s.ActiveOrg(ctx)).Str("key", key).Msg("seeded default users")
	}
	return seeded, nil
}

// Users returns the active organization's users.
func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	return Read[domain.User](ctx, s, s.Key(ctx, domain.CollectionUsers))
}
