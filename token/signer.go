package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when an HS256 signer is built without a key.
var ErrEmptySecret = errors.New("signing secret is empty")

// Signer signs identity tokens and supplies the key to verify them.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)
	Keyfunc(t *jwt.Token) (any, error)
	Method() jwt.SigningMethod
}

// HS256Signer signs with a single shared secret. Access and refresh tokens use the same key
// and are told apart by their type claim.
type HS256Signer struct {
	secret []byte
}

var _ Signer = (*HS256Signer)(nil)

func NewHS256Signer(secret string) (*HS256Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HS256Signer{secret: []byte(secret)}, nil
}

func (h *HS256Signer) Sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("[Sign] %w", err)
	}
	return signed, nil
}

// Keyfunc is passed to jwt.ParseWithClaims. Tokens signed with anything but HMAC are refused.
func (h *HS256Signer) Keyfunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return h.secret, nil
}

func (h *HS256Signer) Method() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
