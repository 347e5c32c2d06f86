package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/hospital-records/session"
	"github.com/jrsteele09/hospital-records/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HTTPDoer is the transport the client sends requests through. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the outcome of an identity operation. Expected failures such as bad credentials,
// rejected input and network errors are reported here rather than as Go errors.
type Result struct {
	Success bool
	Message string
	User    *users.Profile
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

func networkFailure(err error) Result {
	return failure(fmt.Sprintf("Network error: %s", err.Error()))
}

// Client talks to the identity API and keeps the resulting session in a token store.
type Client struct {
	baseURL string
	tokens  *session.TokenStore
	doer    HTTPDoer
	logger  zerolog.Logger
	nowFunc func() time.Time
}

type ClientOption func(*Client)

func WithHTTPDoer(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.doer = doer
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNowFunc sets the clock used for token expiry checks (primarily for testing)
func WithNowFunc(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowFunc = nowFunc
	}
}

func New(baseURL string, tokens *session.TokenStore, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		doer:    &http.Client{Timeout: 30 * time.Second},
		logger:  log.Logger,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Tokens exposes the session the client maintains.
func (c *Client) Tokens() *session.TokenStore {
	return c.tokens
}

func (c *Client) Now() time.Time {
	return c.nowFunc()
}

// NewRequest builds a request for a path relative to the API base URL, encoding body as JSON
// when it is not nil.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[NewRequest] encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("[NewRequest] %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func isSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// closeBody drains the body so the connection can be reused.
func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func setBearer(req *http.Request, tok string) {
	req.Header.Set("Authorization", "Bearer "+tok)
}
