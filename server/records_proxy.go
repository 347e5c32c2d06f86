package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"
)

// Headers the records backend can trust, since the proxy overwrites any client supplied value.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// NewRecordsProxy forwards authorised domain requests to the patient-records backend.
// With no backend configured every domain route answers 503.
func NewRecordsProxy(backendURL string, logger zerolog.Logger) (http.Handler, error) {
	if backendURL == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, "Records backend is not configured", http.StatusServiceUnavailable)
		}), nil
	}

	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("parse records backend url %q: %w", backendURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("records backend url %q must be absolute", backendURL)
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del(HeaderUserID)
			pr.Out.Header.Del(HeaderUserRole)
			if id := requestIDFromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(HeaderRequestID, id)
			}
			if claims, ok := ClaimsFromContext(pr.In.Context()); ok {
				pr.Out.Header.Set(HeaderUserID, claims.Subject)
				pr.Out.Header.Set(HeaderUserRole, string(claims.Role))
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Err(err).Str("path", r.URL.Path).Msg("records backend request failed")
			writeJSONError(w, "Records backend unavailable", http.StatusBadGateway)
		},
	}, nil
}
