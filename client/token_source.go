package client

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/token"
	"golang.org/x/oauth2"
)

// TokenSource exposes the session as an oauth2.TokenSource, so oauth2.NewClient can build an
// *http.Client that authenticates every request. An expired access token is refreshed first.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &sessionTokenSource{ctx: ctx, client: c})
}

type sessionTokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	if tok, err := s.current(); err == nil {
		return tok, nil
	} else if errors.Is(err, apperrors.ErrMalformedToken) {
		s.client.logger.Warn().Err(err).Msg("stored access token is malformed, forcing logout")
		s.client.forceLogout()
		return nil, err
	}

	if res := s.client.RefreshAccessToken(s.ctx); !res.Success {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthorized, "%s", res.Message)
	}
	return s.current()
}

func (s *sessionTokenSource) current() (*oauth2.Token, error) {
	access, err := s.client.tokens.AccessToken()
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, apperrors.ErrUnauthorized
	}

	expiry, err := token.CheckExpiry(access, s.client.Now())
	if err != nil {
		return nil, err
	}
	if !expiry.Valid {
		return nil, apperrors.ErrTokenExpired
	}
	return &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Expiry:      expiry.ExpiresAt,
	}, nil
}
