package session_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/hospital-records/session"
	"github.com/jrsteele09/hospital-records/users"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// failingStore fails every Set of one key.
type failingStore struct {
	*session.MemoryStore
	failKey string
}

func (f *failingStore) Set(key, value string) error {
	if key == f.failKey {
		return errDiskFull
	}
	return f.MemoryStore.Set(key, value)
}

var nurse = users.Profile{ID: "42", Username: "nurse01", FirstName: "Grace", LastName: "Hopper", Role: users.RoleNurse}

func requireEmpty(t *testing.T, store session.Store) {
	t.Helper()
	for _, key := range []string{session.KeyAccessToken, session.KeyRefreshToken, session.KeyUser} {
		_, ok, err := store.Get(key)
		require.NoError(t, err)
		require.False(t, ok, key)
	}
}

func TestSaveSession(t *testing.T) {
	t.Run("writes all keys", func(t *testing.T) {
		ts := session.NewTokenStore(session.NewMemoryStore())
		require.NoError(t, ts.SaveSession("access", "refresh", nurse))

		access, err := ts.AccessToken()
		require.NoError(t, err)
		require.Equal(t, "access", access)

		refresh, err := ts.RefreshToken()
		require.NoError(t, err)
		require.Equal(t, "refresh", refresh)

		user, err := ts.User()
		require.NoError(t, err)
		require.Equal(t, nurse, *user)
	})

	for _, key := range []string{session.KeyAccessToken, session.KeyRefreshToken, session.KeyUser} {
		t.Run("rolls back when "+key+" fails", func(t *testing.T) {
			store := &failingStore{MemoryStore: session.NewMemoryStore(), failKey: key}
			ts := session.NewTokenStore(store)

			err := ts.SaveSession("access", "refresh", nurse)
			require.ErrorIs(t, err, errDiskFull)
			requireEmpty(t, store)
		})
	}

	t.Run("failure replaces an older session entirely", func(t *testing.T) {
		store := &failingStore{MemoryStore: session.NewMemoryStore()}
		ts := session.NewTokenStore(store)
		require.NoError(t, ts.SaveSession("old-access", "old-refresh", nurse))

		store.failKey = session.KeyUser
		require.Error(t, ts.SaveSession("new-access", "new-refresh", nurse))
		requireEmpty(t, store)
	})
}

func TestTokenStoreUser(t *testing.T) {
	t.Run("no user without access token", func(t *testing.T) {
		store := session.NewMemoryStore()
		ts := session.NewTokenStore(store)
		require.NoError(t, ts.SaveSession("access", "refresh", nurse))
		require.NoError(t, store.Delete(session.KeyAccessToken))

		user, err := ts.User()
		require.NoError(t, err)
		require.Nil(t, user)
	})

	t.Run("corrupt cache", func(t *testing.T) {
		store := session.NewMemoryStore()
		ts := session.NewTokenStore(store)
		require.NoError(t, store.Set(session.KeyAccessToken, "access"))
		require.NoError(t, store.Set(session.KeyUser, "{not json"))

		_, err := ts.User()
		require.Error(t, err)
	})
}

func TestSetAccessTokenKeepsRest(t *testing.T) {
	ts := session.NewTokenStore(session.NewMemoryStore())
	require.NoError(t, ts.SaveSession("access", "refresh", nurse))
	require.NoError(t, ts.SetAccessToken("fresh"))

	access, _ := ts.AccessToken()
	refresh, _ := ts.RefreshToken()
	user, err := ts.User()
	require.NoError(t, err)
	require.Equal(t, "fresh", access)
	require.Equal(t, "refresh", refresh)
	require.Equal(t, nurse, *user)
}

func TestClear(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set("unrelated", "kept"))
	ts := session.NewTokenStore(store)
	require.NoError(t, ts.SaveSession("access", "refresh", nurse))

	require.NoError(t, ts.Clear())
	requireEmpty(t, store)

	v, ok, err := store.Get("unrelated")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kept", v)
}
