package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/hospital-records/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("ENV", "")
		c := config.New()
		require.Equal(t, ":5000", c.GetPort())
		require.Equal(t, "DEV", c.GetEnv())
		require.Equal(t, "", c.GetRecordsBackendURL())
	})

	t.Run("port already prefixed", func(t *testing.T) {
		t.Setenv("PORT", ":9090")
		require.Equal(t, ":9090", config.New().GetPort())
	})

	t.Run("port without prefix", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		require.Equal(t, ":9090", config.New().GetPort())
	})
}

func TestCorsOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://a.test"))
	require.True(t, origins.IsAllowedOrigin("http://b.test"))
	require.False(t, origins.IsAllowedOrigin("*"))
}

func TestSigningSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	require.Equal(t, config.DefaultSigningSecret, config.New().GetSigningSecret())

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	require.Equal(t, "s3cret", config.New().GetSigningSecret())
}

func TestTokenExpiry(t *testing.T) {
	c := config.New()
	require.Equal(t, time.Hour, c.GetAccessTokenExpiry())
	require.Equal(t, 30*24*time.Hour, c.GetRefreshTokenExpiry())
}

func TestSecurity(t *testing.T) {
	t.Setenv("SESSION_PURGE_SCHEDULE", "")
	c := config.New()
	require.Equal(t, "0 0 * * * *", c.GetSessionPurgeSchedule())
	require.Equal(t, int64(1<<20), c.GetMaxRequestBodyBytes())

	t.Setenv("SESSION_PURGE_SCHEDULE", "@every 10m")
	require.Equal(t, "@every 10m", c.GetSessionPurgeSchedule())

	t.Setenv("TRUSTED_PROXIES", "")
	require.Empty(t, c.GetTrustedProxies())
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.10,")
	require.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, c.GetTrustedProxies())
}

func TestClientConfig(t *testing.T) {
	t.Setenv("FOLDER", "/tmp/records")
	t.Setenv("TOKEN_STORE", "")
	c := config.NewClient()
	require.Equal(t, filepath.Join("/tmp/records", "session.json"), c.GetTokenStorePath())
}
