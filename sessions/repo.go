package sessions

import "time"

// Repo defines the interface for login session storage.
type Repo interface {
	// Upsert creates or updates a session
	Upsert(session *SessionData) error

	// Get retrieves a session by ID
	Get(sessionID string) (*SessionData, error)

	// Delete removes a session by ID
	Delete(sessionID string) error

	// DeleteByUserID removes every session owned by the user
	DeleteByUserID(userID string) error

	// DeleteExpiredSessions removes sessions that expired before the specified time
	DeleteExpiredSessions(now time.Time) error
}
