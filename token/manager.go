package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/users"
)

// Manager issues and verifies the access and refresh tokens of the identity API.
type Manager struct {
	signer             Signer
	issuer             string
	denylist           Denylist
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithDenylist(d Denylist) ManagerOption {
	return func(m *Manager) {
		m.denylist = d
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:   signer,
		denylist: NewMemoryDenylist(),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = time.Hour
	}
	if m.refreshTokenExpiry == 0 {
		m.refreshTokenExpiry = 30 * 24 * time.Hour
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// CreateAccessToken issues a short-lived access token for the user
func (m *Manager) CreateAccessToken(user *users.User) (string, *Claims, error) {
	return m.create(user, TypeAccess, m.accessTokenExpiry)
}

// CreateRefreshToken issues a long-lived refresh token for the user
func (m *Manager) CreateRefreshToken(user *users.User) (string, *Claims, error) {
	return m.create(user, TypeRefresh, m.refreshTokenExpiry)
}

// RefreshAccessToken mints a new access token from verified refresh claims. The refresh token
// itself is not rotated.
func (m *Manager) RefreshAccessToken(refreshClaims *Claims) (string, *Claims, error) {
	if refreshClaims.Type != TypeRefresh {
		return "", nil, apperrors.ErrWrongTokenType
	}
	user := &users.User{
		ID:       refreshClaims.Subject,
		Username: refreshClaims.Username,
		Role:     refreshClaims.Role,
	}
	return m.create(user, TypeAccess, m.accessTokenExpiry)
}

func (m *Manager) create(user *users.User, tokenType Type, expiry time.Duration) (string, *Claims, error) {
	now := m.nowFunc()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, claims, nil
}

// Verify checks the signature, expiry, type and revocation status of a raw token
func (m *Manager) Verify(rawToken string, expected Type) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, m.signer.Keyfunc,
		jwt.WithValidMethods([]string{m.signer.Method().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "verify: %s", err.Error())
	}
	if !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Type != expected {
		return nil, apperrors.ErrWrongTokenType
	}
	if claims.ID != "" && m.denylist.Denied(claims.ID) {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blocks the token identified by claims until it would have expired anyway
func (m *Manager) Revoke(claims *Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return apperrors.ErrInvalidToken
	}
	m.denylist.Deny(claims.ID, claims.ExpiresAt.Time)
	return nil
}

// PruneRevoked forgets revoked tokens that have expired on their own and returns how many.
func (m *Manager) PruneRevoked() int {
	return m.denylist.Prune(m.nowFunc())
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshTokenExpiry
}
