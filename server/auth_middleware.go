package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/token"
	"github.com/jrsteele09/hospital-records/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
)

// ClaimsFromContext returns the access token claims placed by RequireAuth
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok && claims != nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.Wrapf(apperrors.ErrUnauthorized, "Missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperrors.Wrapf(apperrors.ErrUnauthorized, "Invalid Authorization header format")
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", apperrors.Wrapf(apperrors.ErrUnauthorized, "Empty token")
	}
	return raw, nil
}

// RequireAuth is middleware that validates a Bearer access token and puts its claims in the
// request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeJSONError(w, "Missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := s.identity.Authenticate(raw)
			if err != nil {
				msg := "Invalid token"
				switch {
				case apperrors.Is(err, apperrors.ErrTokenExpired):
					msg = "Token has expired"
				case apperrors.Is(err, apperrors.ErrTokenRevoked):
					msg = "Token has been revoked"
				}
				writeJSONError(w, msg, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole is middleware that only lets through callers whose role is in the allow-list.
// Must be chained after RequireAuth.
func (s *Server) RequireRole(allowed ...users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.Role.In(allowed) {
				role := ""
				if ok {
					role = string(claims.Role)
				}
				s.metrics.denied(role)
				writeJSONError(w, "Access denied: insufficient permissions", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}
