package records

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/hospital-records/authmodel"
	"github.com/jrsteele09/hospital-records/client"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
)

var (
	// ErrUnauthorized means the session could not be recovered. It has been cleared and the
	// caller should send the user to the login page.
	ErrUnauthorized = apperrors.ErrUnauthorized
	ErrForbidden    = apperrors.ErrForbidden
	ErrNotFound     = apperrors.ErrNotFound
)

// Analytics reports served by the records backend.
const (
	HighRiskPregnancies = "high-risk-pregnancies"
	MissedFollowUps     = "missed-follow-ups"
	Demographics        = "demographics"
)

func AnalyticsReports() []string {
	return []string{HighRiskPregnancies, MissedFollowUps, Demographics}
}

// Fetcher sends authenticated requests. *client.Client satisfies it.
type Fetcher interface {
	NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error)
	AuthFetch(ctx context.Context, req *http.Request) (*http.Response, error)
	ForceLogout()
}

var _ Fetcher = (*client.Client)(nil)

// Client reads patient records and analytics through the authenticated request wrapper.
// Payloads are returned as raw JSON since their shape belongs to the records backend.
type Client struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

func (c *Client) Patients(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/patients")
}

func (c *Client) Patient(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "patient id is required")
	}
	return c.get(ctx, "/api/patients/"+url.PathEscape(id))
}

// Analytics fetches one of the named analytics reports.
func (c *Client) Analytics(ctx context.Context, report string) (json.RawMessage, error) {
	for _, known := range AnalyticsReports() {
		if report == known {
			return c.get(ctx, "/api/analytics/"+report)
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown analytics report %q", report)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := c.fetcher.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetcher.AuthFetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("[records] GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		// AuthFetch already tried to refresh; a 401 here means the session is over.
		c.fetcher.ForceLogout()
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusNotFound:
		return nil, apperrors.Wrapf(ErrNotFound, "%s", path)
	default:
		return nil, fmt.Errorf("[records] GET %s: %d %s", path, resp.StatusCode,
			authmodel.DecodeErrorMessage(resp.Body, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[records] read %s: %w", path, err)
	}
	if !json.Valid(body) {
		return nil, &authmodel.DecodeError{Endpoint: path, Err: authmodel.ErrInvalidJSON}
	}
	return json.RawMessage(body), nil
}
