package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/hospital-records/authmodel"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/users"
)

// RegisterInput is the registration form, including the password confirmation field.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Password     string
	Confirmation string
}

// Login exchanges credentials for a session. On success the access token, refresh token and
// profile are stored together; on failure the store is left untouched.
func (c *Client) Login(ctx context.Context, username, password string) Result {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return invalid(err)
	}
	if password == "" {
		return failure("Password is required")
	}

	req, err := c.NewRequest(ctx, http.MethodPost, authmodel.PathLogin, authmodel.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return failure(err.Error())
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return networkFailure(err)
	}
	defer closeBody(resp)

	if !isSuccess(resp) {
		return failure(authmodel.DecodeErrorMessage(resp.Body, "Login failed"))
	}

	var out authmodel.LoginResponse
	if err := authmodel.Decode(resp.Body, "login", &out); err != nil {
		c.logger.Warn().Err(err).Msg("unexpected login response")
		return failure("Unexpected response from server")
	}

	profile := out.Profile()
	if err := c.tokens.SaveSession(out.AccessToken, out.RefreshToken, profile); err != nil {
		c.logger.Err(err).Msg("failed to save session")
		return failure("Could not save session")
	}

	c.logger.Debug().Str("username", profile.Username).Str("role", string(profile.Role)).Msg("logged in")
	return Result{Success: true, Message: messageOr(out.Message, "Login successful"), User: &profile}
}

// Register creates an account. It never logs the user in, so the store is not touched.
func (c *Client) Register(ctx context.Context, in RegisterInput) Result {
	body := authmodel.RegisterRequest{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
	}
	if err := body.Validate(); err != nil {
		var de *authmodel.DecodeError
		if errors.As(err, &de) && de.Field != "" {
			return failure("Missing required field: " + de.Field)
		}
		return failure(err.Error())
	}
	if err := ValidateUsername(body.Username); err != nil {
		return invalid(err)
	}
	if err := ValidatePassword(body.Password); err != nil {
		return invalid(err)
	}
	if err := ValidateConfirmation(in.Password, in.Confirmation); err != nil {
		return invalid(err)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, authmodel.PathRegister, body)
	if err != nil {
		return failure(err.Error())
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return networkFailure(err)
	}
	defer closeBody(resp)

	if !isSuccess(resp) {
		return failure(authmodel.DecodeErrorMessage(resp.Body, "Registration failed"))
	}

	// The body carries nothing the client needs, so an unexpected shape is not a failure.
	var out authmodel.RegisterResponse
	if err := authmodel.Decode(resp.Body, "register", &out); err != nil {
		c.logger.Debug().Err(err).Msg("ignoring register response body")
	}
	return Result{Success: true, Message: messageOr(out.Message, "Registration successful. Please log in.")}
}

// Logout asks the server to end the session and then clears the local store whatever the
// server said. A failed server call only gets logged.
func (c *Client) Logout(ctx context.Context) Result {
	access, err := c.tokens.AccessToken()
	if err != nil {
		c.logger.Warn().Err(err).Msg("reading access token for logout")
	}

	if access != "" {
		if err := c.notifyLogout(ctx, access); err != nil {
			c.logger.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}

	if err := c.tokens.Clear(); err != nil {
		c.logger.Err(err).Msg("failed to clear session")
		return failure("Could not clear session")
	}
	return Result{Success: true, Message: "Logout successful"}
}

func (c *Client) notifyLogout(ctx context.Context, access string) error {
	req, err := c.NewRequest(ctx, http.MethodPost, authmodel.PathLogout, nil)
	if err != nil {
		return err
	}
	setBearer(req, access)

	resp, err := c.doer.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if !isSuccess(resp) {
		return fmt.Errorf("logout returned %d", resp.StatusCode)
	}
	return nil
}

// RefreshAccessToken mints a new access token from the stored refresh token and replaces only
// the access token. Any failure is a forced logout: the whole store is cleared.
func (c *Client) RefreshAccessToken(ctx context.Context) Result {
	res := c.refresh(ctx)
	if !res.Success {
		c.logger.Warn().Str("reason", res.Message).Msg("refresh failed, forcing logout")
		c.forceLogout()
	}
	return res
}

func (c *Client) refresh(ctx context.Context) Result {
	refreshToken, err := c.tokens.RefreshToken()
	if err != nil {
		return failure(err.Error())
	}
	if refreshToken == "" {
		return failure("No refresh token available")
	}

	req, err := c.NewRequest(ctx, http.MethodPost, authmodel.PathRefresh, nil)
	if err != nil {
		return failure(err.Error())
	}
	setBearer(req, refreshToken)

	resp, err := c.doer.Do(req)
	if err != nil {
		return networkFailure(err)
	}
	defer closeBody(resp)

	if !isSuccess(resp) {
		return failure(authmodel.DecodeErrorMessage(resp.Body, "Session expired"))
	}

	var out authmodel.RefreshResponse
	if err := authmodel.Decode(resp.Body, "refresh", &out); err != nil {
		return failure("Unexpected response from server")
	}
	if err := c.tokens.SetAccessToken(out.AccessToken); err != nil {
		return failure(err.Error())
	}
	return Result{Success: true, Message: "Token refreshed"}
}

// ForceLogout clears the local session without contacting the server.
func (c *Client) ForceLogout() {
	c.forceLogout()
}

func (c *Client) forceLogout() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Err(err).Msg("failed to clear session during forced logout")
	}
}

// CurrentUser is the cached profile, or nil when nobody is logged in.
func (c *Client) CurrentUser() *users.Profile {
	user, err := c.tokens.User()
	if err != nil {
		c.logger.Warn().Err(err).Msg("reading cached user")
		return nil
	}
	return user
}

// FetchProfile reads the caller's stored profile from the server.
func (c *Client) FetchProfile(ctx context.Context) (*authmodel.UserResponse, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, authmodel.PathMe, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.AuthFetch(ctx, req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.ErrUnauthorized
	case !isSuccess(resp):
		return nil, fmt.Errorf("[FetchProfile] %s", authmodel.DecodeErrorMessage(resp.Body, resp.Status))
	}

	var out authmodel.UserResponse
	if err := authmodel.Decode(resp.Body, "me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func messageOr(message, def string) string {
	if message == "" {
		return def
	}
	return message
}
