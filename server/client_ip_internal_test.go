package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	proxies, err := parseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.10", "::1"})
	require.NoError(t, err)
	s := &Server{proxies: proxies}

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"direct client", "203.0.113.5:4000", "", "203.0.113.5"},
		{"untrusted peer cannot choose its address", "203.0.113.5:4000", "1.2.3.4", "203.0.113.5"},
		{"trusted cidr", "10.1.2.3:4000", "198.51.100.7, 10.1.2.3", "198.51.100.7"},
		{"trusted single address", "192.168.1.10:80", "198.51.100.8", "198.51.100.8"},
		{"trusted ipv6 loopback", "[::1]:8080", "198.51.100.9", "198.51.100.9"},
		{"trusted peer with empty first hop", "10.1.2.3:4000", " , 1.2.3.4", "10.1.2.3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/login", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			require.Equal(t, tc.want, s.clientIP(r))
		})
	}

	t.Run("no trusted proxies ignores the header", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/auth/login", nil)
		r.RemoteAddr = "10.1.2.3:4000"
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
		require.Equal(t, "10.1.2.3", (&Server{}).clientIP(r))
	})

	t.Run("invalid entry", func(t *testing.T) {
		_, err := parseTrustedProxies([]string{"not-an-ip"})
		require.Error(t, err)
		_, err = parseTrustedProxies([]string{"10.0.0.0/99"})
		require.Error(t, err)
	})
}
