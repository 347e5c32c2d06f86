package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// AuthFetch sends req with the current access token attached, if there is one.
//
// A 401 response while a refresh token is stored triggers one refresh. If the refresh succeeds
// the request is sent again with the new token and that response is returned; if it fails the
// original 401 is returned and the session has already been cleared. A request is never
// retried more than once. The error is only set for transport failures.
func (c *Client) AuthFetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	access, err := c.tokens.AccessToken()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	refreshToken, err := c.tokens.RefreshToken()
	if err != nil || refreshToken == "" {
		return resp, nil
	}

	if res := c.RefreshAccessToken(ctx); !res.Success {
		return resp, nil
	}

	access, err = c.tokens.AccessToken()
	if err != nil {
		return resp, nil
	}
	closeBody(resp)
	return c.send(ctx, req, access)
}

func (c *Client) send(ctx context.Context, req *http.Request, access string) (*http.Response, error) {
	attempt := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("[AuthFetch] replay body: %w", err)
		}
		attempt.Body = body
	}
	attempt.Header.Del("Authorization")
	if access != "" {
		setBearer(attempt, access)
	}
	return c.doer.Do(attempt)
}

// bufferBody makes a request body replayable so it can be sent a second time.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("[AuthFetch] read body: %w", err)
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}
