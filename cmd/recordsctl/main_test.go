package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/hospital-records/auth"
	"github.com/jrsteele09/hospital-records/internal/config"
	"github.com/jrsteele09/hospital-records/server"
	fakesessionrepo "github.com/jrsteele09/hospital-records/sessions/repofakes"
	"github.com/jrsteele09/hospital-records/users"
	fakeuserrepo "github.com/jrsteele09/hospital-records/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secure#123"

func setupAPI(t *testing.T) auth.Repos {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET_KEY", "test-signing-secret")

	repos := auth.Repos{
		Users:    fakeuserrepo.NewFakeUserRepo(),
		Sessions: fakesessionrepo.NewFakeSessionRepo(),
	}
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"first_name":"Mary"}]`))
	})
	s, err := server.New(config.New(), repos, server.WithLogger(zerolog.Nop()), server.WithRecordsHandler(backend))
	require.NoError(t, err)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	t.Setenv("API_BASE_URL", ts.URL)
	t.Setenv("TOKEN_STORE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv(passwordEnvVar, "")
	return repos
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&app{out: &out})
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecordsctl(t *testing.T) {
	repos := setupAPI(t)
	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, repos.Users.Upsert(&users.User{
		Username: "analyst1", Email: "analyst1@example.com", PasswordHash: hash,
		FirstName: "Ada", LastName: "Lovelace", Role: users.RoleDataAnalyst, Active: true,
	}))

	t.Run("data commands need a session", func(t *testing.T) {
		_, err := execute(t, "patients")
		require.ErrorContains(t, err, "not logged in")
	})

	t.Run("login", func(t *testing.T) {
		out, err := execute(t, "login", "analyst1", "-p", testPassword)
		require.NoError(t, err)
		require.Contains(t, out, "Welcome Ada Lovelace (data_analyst)")
	})

	t.Run("whoami as yaml", func(t *testing.T) {
		out, err := execute(t, "whoami", "-o", "yaml")
		require.NoError(t, err)
		require.Contains(t, out, "state: valid")
		require.Contains(t, out, "role: data_analyst")
		require.Contains(t, out, "- demographics")
		require.NotContains(t, out, "patient-detail")
	})

	t.Run("patients", func(t *testing.T) {
		out, err := execute(t, "patients")
		require.NoError(t, err)
		require.Contains(t, out, `"first_name": "Mary"`)
	})

	t.Run("role gate", func(t *testing.T) {
		_, err := execute(t, "patients", "1")
		require.ErrorContains(t, err, "does not have access")
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := execute(t, "analytics", "salaries")
		require.Error(t, err)
	})

	t.Run("logout", func(t *testing.T) {
		out, err := execute(t, "logout")
		require.NoError(t, err)
		require.Contains(t, out, "Logout successful")

		_, err = execute(t, "whoami")
		require.ErrorContains(t, err, "not logged in")
	})

	t.Run("register reads password and confirmation from piped stdin", func(t *testing.T) {
		out, err := executeWithInput(t, "Piped#123\nPiped#123\n", "register", "pipeduser",
			"--first-name", "P", "--last-name", "U", "--email", "piped@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, out)

		stored, err := repos.Users.GetByUsername("pipeduser")
		require.NoError(t, err)
		require.True(t, stored.CheckPassword("Piped#123"))
	})

	t.Run("weak password is refused locally", func(t *testing.T) {
		_, err := execute(t, "register", "newuser", "--first-name", "N", "--last-name", "U",
			"--email", "n@example.com", "-p", "abc", "--confirm", "abc")
		require.ErrorContains(t, err, "uppercase")
	})
}
