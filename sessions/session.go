package sessions

import (
	"time"
)

// SessionData is the server-side record of a login. Its ID is the jti of the refresh token
// issued at login, so deleting the session invalidates that refresh token.
type SessionData struct {
	ID        string    // Refresh token jti
	UserID    string    // Owner of the session
	IPAddress string    // Remote address at login
	UserAgent string    // User agent at login
	CreatedAt time.Time // When the session was created
	ExpiresAt time.Time // Matches the refresh token expiry
}

// Expired reports whether the session is past its expiry at now.
func (s *SessionData) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
