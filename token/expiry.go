package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
)

// Expiry is the client-side view of an access token's lifetime.
type Expiry struct {
	Valid     bool
	ExpiresAt time.Time
}

// ExpiresAtEpochMs is the expiry in milliseconds since the epoch.
func (e Expiry) ExpiresAtEpochMs() int64 {
	if e.ExpiresAt.IsZero() {
		return 0
	}
	return e.ExpiresAt.UnixMilli()
}

// CheckExpiry reads the exp claim from the token payload without verifying the signature.
// Verification is the server's job on every protected request; this only avoids sending
// requests that are bound to fail. A token is valid while now is strictly before its expiry.
//
// A token that cannot be decoded or has no exp claim returns ErrMalformedToken and must be
// treated as a forced logout.
func CheckExpiry(rawToken string, now time.Time) (Expiry, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return Expiry{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "decode: %s", err.Error())
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Expiry{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "exp claim: %s", err.Error())
	}
	if exp == nil {
		return Expiry{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "missing exp claim")
	}

	return Expiry{
		Valid:     now.Before(exp.Time),
		ExpiresAt: exp.Time,
	}, nil
}
