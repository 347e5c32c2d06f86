package config

import (
	"errors"
	"time"
)

// DefaultSigningSecret is the development-only fallback when JWT_SECRET_KEY is unset.
const DefaultSigningSecret = "your-secret-key-change-me"

// ErrDefaultSigningSecret is returned when a non-DEV environment would sign with the public default.
var ErrDefaultSigningSecret = errors.New("JWT_SECRET_KEY must be set outside DEV")

type TokenConfig interface {
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

// GetSigningSecret is the HMAC key used for both access and refresh tokens.
func (Tokens) GetSigningSecret() string {
	return GetEnv("JWT_SECRET_KEY", DefaultSigningSecret)
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return 30 * 24 * time.Hour // 30 days
}
