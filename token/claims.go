package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/hospital-records/users"
)

// Type distinguishes access tokens from refresh tokens. Both are signed with the same key,
// so the type claim is what stops a refresh token being used as an access token.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims carried by both token types. The subject is the user ID.
type Claims struct {
	Username string     `json:"username"`
	Role     users.Role `json:"role"`
	Type     Type       `json:"type"`
	jwt.RegisteredClaims
}
