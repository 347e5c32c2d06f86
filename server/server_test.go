package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/hospital-records/auth"
	"github.com/jrsteele09/hospital-records/authmodel"
	"github.com/jrsteele09/hospital-records/internal/config"
	"github.com/jrsteele09/hospital-records/server"
	fakesessionrepo "github.com/jrsteele09/hospital-records/sessions/repofakes"
	"github.com/jrsteele09/hospital-records/users"
	fakeuserrepo "github.com/jrsteele09/hospital-records/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secure#123"

type serverFixture struct {
	repos  auth.Repos
	server *httptest.Server
}

func setupServer(t *testing.T, options ...server.ServerOption) *serverFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET_KEY", "test-signing-secret")

	repos := auth.Repos{
		Users:    fakeuserrepo.NewFakeUserRepo(),
		Sessions: fakesessionrepo.NewFakeSessionRepo(),
	}
	options = append([]server.ServerOption{server.WithLogger(zerolog.Nop())}, options...)
	s, err := server.New(config.New(), repos, options...)
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return &serverFixture{repos: repos, server: ts}
}

func (f *serverFixture) createUser(t *testing.T, username string, role users.Role) {
	t.Helper()
	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, f.repos.Users.Upsert(&users.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
		Active:       true,
	}))
}

func (f *serverFixture) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *serverFixture) login(t *testing.T, username string) authmodel.LoginResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, server.RouteAuthLogin, "", authmodel.LoginRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out authmodel.LoginResponse
	require.NoError(t, authmodel.Decode(resp.Body, "login", &out))
	return out
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body authmodel.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestHealth(t *testing.T) {
	f := setupServer(t)
	resp := f.do(t, http.MethodGet, server.RouteHealth, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body authmodel.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "healthy", body.Status)
}

func TestSigningSecretRequiredOutsideDev(t *testing.T) {
	newServer := func() error {
		repos := auth.Repos{
			Users:    fakeuserrepo.NewFakeUserRepo(),
			Sessions: fakesessionrepo.NewFakeSessionRepo(),
		}
		_, err := server.New(config.New(), repos, server.WithLogger(zerolog.Nop()))
		return err
	}

	t.Run("default secret refused in production", func(t *testing.T) {
		t.Setenv("ENV", "PROD")
		t.Setenv("JWT_SECRET_KEY", "")
		require.ErrorIs(t, newServer(), config.ErrDefaultSigningSecret)
	})

	t.Run("explicit secret accepted in production", func(t *testing.T) {
		t.Setenv("ENV", "PROD")
		t.Setenv("JWT_SECRET_KEY", "a-real-deployment-secret")
		require.NoError(t, newServer())
	})

	t.Run("default secret allowed in development", func(t *testing.T) {
		t.Setenv("ENV", "DEV")
		t.Setenv("JWT_SECRET_KEY", "")
		require.NoError(t, newServer())
	})
}

func TestBootstrapCreatesAdmin(t *testing.T) {
	f := setupServer(t)
	n, err := f.repos.Users.CountByRole(users.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRegisterEndpoint(t *testing.T) {
	f := setupServer(t)
	req := authmodel.RegisterRequest{FirstName: "Ann", LastName: "Lee", Username: "annlee", Email: "ann@example.com", Password: testPassword}

	resp := f.do(t, http.MethodPost, server.RouteAuthRegister, "", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out authmodel.RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, users.RoleReceptionist, out.Role)

	resp = f.do(t, http.MethodPost, server.RouteAuthRegister, "", req)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "Username or email already exists", errorMessage(t, resp))

	req.Username, req.Email, req.Password = "bobsmith", "bob@example.com", "abc"
	resp = f.do(t, http.MethodPost, server.RouteAuthRegister, "", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, errorMessage(t, resp), "uppercase")

	req.Email = ""
	resp = f.do(t, http.MethodPost, server.RouteAuthRegister, "", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Missing required field: email", errorMessage(t, resp))
}

func TestLoginEndpoint(t *testing.T) {
	f := setupServer(t)
	f.createUser(t, "nurse01", users.RoleNurse)

	t.Run("success", func(t *testing.T) {
		out := f.login(t, "nurse01")
		require.Equal(t, "nurse01", out.Username)
		require.Equal(t, users.RoleNurse, out.Role)
		require.Equal(t, "Test", out.FirstName)
	})

	t.Run("bad credentials", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, server.RouteAuthLogin, "", authmodel.LoginRequest{Username: "nurse01", Password: "Wrong#123"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Invalid username or password", errorMessage(t, resp))
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, server.RouteAuthLogin, "", authmodel.LoginRequest{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("disabled", func(t *testing.T) {
		u, err := f.repos.Users.GetByUsername("nurse01")
		require.NoError(t, err)
		u.Active = false
		require.NoError(t, f.repos.Users.Upsert(u))

		resp := f.do(t, http.MethodPost, server.RouteAuthLogin, "", authmodel.LoginRequest{Username: "nurse01", Password: testPassword})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Account is disabled", errorMessage(t, resp))
	})
}

func TestSessionLifecycle(t *testing.T) {
	f := setupServer(t)
	f.createUser(t, "doctor01", users.RoleDoctor)
	tokens := f.login(t, "doctor01")

	t.Run("me", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, server.RouteAuthMe, tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var me authmodel.UserResponse
		require.NoError(t, authmodel.Decode(resp.Body, "me", &me))
		require.Equal(t, "doctor01", me.Username)
		require.Equal(t, users.RoleDoctor, me.Role)
		require.True(t, me.IsActive)
		require.NotNil(t, me.LastLogin)
	})

	t.Run("me without token", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, server.RouteAuthMe, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, server.RouteAuthMe, tokens.RefreshToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, server.RouteAuthRefresh, tokens.RefreshToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out authmodel.RefreshResponse
		require.NoError(t, authmodel.Decode(resp.Body, "refresh", &out))

		resp = f.do(t, http.MethodGet, server.RouteAuthMe, out.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("refresh with access token", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, server.RouteAuthRefresh, tokens.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("logout revokes", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, server.RouteAuthLogout, tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = f.do(t, http.MethodGet, server.RouteAuthMe, tokens.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Token has been revoked", errorMessage(t, resp))

		resp = f.do(t, http.MethodPost, server.RouteAuthRefresh, tokens.RefreshToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRecordsRoutes(t *testing.T) {
	var gotUserID, gotRole string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := server.ClaimsFromContext(r.Context())
		if ok {
			gotUserID, gotRole = claims.Subject, string(claims.Role)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	f := setupServer(t, server.WithRecordsHandler(backend))
	f.createUser(t, "nurse01", users.RoleNurse)
	f.createUser(t, "analyst1", users.RoleDataAnalyst)
	nurse := f.login(t, "nurse01")
	analyst := f.login(t, "analyst1")

	t.Run("unauthenticated", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/patients", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("allowed role reaches backend", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/patients/7", nurse.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, string(nurse.UserID), gotUserID)
		require.Equal(t, "nurse", gotRole)
	})

	t.Run("role outside allow-list is forbidden", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/analytics/demographics", nurse.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Access denied: insufficient permissions", errorMessage(t, resp))

		resp = f.do(t, http.MethodGet, "/api/analytics/demographics", analyst.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("analyst cannot read a single patient", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/patients/7", analyst.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestRecordsBackendNotConfigured(t *testing.T) {
	t.Setenv("RECORDS_BACKEND_URL", "")
	f := setupServer(t)
	f.createUser(t, "doctor01", users.RoleDoctor)
	tokens := f.login(t, "doctor01")

	resp := f.do(t, http.MethodGet, "/api/patients", tokens.AccessToken, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCorsPreflight(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://dashboard.test")
	f := setupServer(t)

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+"/api/patients", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.test")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "http://dashboard.test", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestMetricsAndRequestID(t *testing.T) {
	f := setupServer(t)
	f.createUser(t, "nurse01", users.RoleNurse)
	f.login(t, "nurse01")
	resp := f.do(t, http.MethodPost, server.RouteAuthLogin, "", authmodel.LoginRequest{Username: "nurse01", Password: "Wrong#123"})
	require.NotEmpty(t, resp.Header.Get(server.HeaderRequestID))

	resp = f.do(t, http.MethodGet, server.RouteMetrics, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	require.Contains(t, text, `hospital_records_auth_events_total{operation="login",outcome="success"} 1`)
	require.Contains(t, text, `hospital_records_auth_events_total{operation="login",outcome="failure"} 1`)
	require.Contains(t, text, "go_goroutines")
}
