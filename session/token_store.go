package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/hospital-records/users"
)

// TokenStore holds the client session: access token, refresh token and cached user profile.
// The access token and the profile are written and removed together.
type TokenStore struct {
	store Store
}

func NewTokenStore(store Store) *TokenStore {
	return &TokenStore{store: store}
}

// SaveSession writes all three keys. If any write fails every key is cleared, so a caller
// never observes a partial session.
func (ts *TokenStore) SaveSession(accessToken, refreshToken string, user users.Profile) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("[SaveSession] encode user: %w", err)
	}

	for _, kv := range []struct{ key, value string }{
		{KeyAccessToken, accessToken},
		{KeyRefreshToken, refreshToken},
		{KeyUser, string(profile)},
	} {
		if err := ts.store.Set(kv.key, kv.value); err != nil {
			return errors.Join(fmt.Errorf("[SaveSession] set %s: %w", kv.key, err), ts.Clear())
		}
	}
	return nil
}

// SetAccessToken replaces only the access token, leaving the refresh token and profile as they are.
func (ts *TokenStore) SetAccessToken(accessToken string) error {
	if err := ts.store.Set(KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("[SetAccessToken] %w", err)
	}
	return nil
}

// AccessToken returns "" when no access token is stored.
func (ts *TokenStore) AccessToken() (string, error) {
	return ts.get(KeyAccessToken)
}

// RefreshToken returns "" when no refresh token is stored.
func (ts *TokenStore) RefreshToken() (string, error) {
	return ts.get(KeyRefreshToken)
}

// User returns the cached profile, or nil when there is no access token backing it.
func (ts *TokenStore) User() (*users.Profile, error) {
	access, err := ts.AccessToken()
	if err != nil || access == "" {
		return nil, err
	}
	raw, err := ts.get(KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var profile users.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("[User] decode cached user: %w", err)
	}
	return &profile, nil
}

// Clear removes the whole session.
func (ts *TokenStore) Clear() error {
	var errs []error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := ts.store.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("[Clear] delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (ts *TokenStore) get(key string) (string, error) {
	v, ok, err := ts.store.Get(key)
	if err != nil {
		return "", fmt.Errorf("[TokenStore] get %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}
