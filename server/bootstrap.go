package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/hospital-records/users"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@hospital.local"
)

// InitialiseSystem creates the first admin account when none exists.
// Returns the generated password on first creation (empty string if an admin already exists)
func (s *Server) InitialiseSystem(ctx context.Context) (generatedPassword string, err error) {
	count, err := s.repos.Users.CountByRole(users.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		s.logger.Info().Msg("Bootstrap: System already configured")
		return "", nil
	}

	generatedPassword, err = generateAdminPassword()
	if err != nil {
		return "", err
	}
	hash, err := users.HashPassword(generatedPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &users.User{
		Username:     DefaultAdminUsername,
		Email:        DefaultAdminEmail,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         users.RoleAdmin,
		Active:       true,
		DateJoined:   s.nowTime(),
	}
	if err := s.repos.Users.Create(admin); err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Warn().
		Str("username", admin.Username).
		Str("password", generatedPassword).
		Msg("Bootstrap: admin account created. SAVE THIS PASSWORD - it will not be displayed again!")
	return generatedPassword, nil
}

// generateAdminPassword returns a random password that always satisfies the password policy
func generateAdminPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate admin password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b) + "A1#", nil
}
