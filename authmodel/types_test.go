package authmodel_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jrsteele09/hospital-records/authmodel"
	"github.com/jrsteele09/hospital-records/users"
	"github.com/stretchr/testify/require"
)

func TestDecodeLoginResponse(t *testing.T) {
	t.Run("numeric user id", func(t *testing.T) {
		var resp authmodel.LoginResponse
		err := authmodel.Decode(strings.NewReader(`{"access_token":"a","refresh_token":"r","user_id":42,"username":"nurse01","first_name":"Ann","last_name":"Lee","role":"nurse"}`), "login", &resp)
		require.NoError(t, err)
		require.Equal(t, authmodel.UserID("42"), resp.UserID)
		require.Equal(t, users.Profile{ID: "42", Username: "nurse01", FirstName: "Ann", LastName: "Lee", Role: users.RoleNurse}, resp.Profile())
	})

	t.Run("string user id", func(t *testing.T) {
		var resp authmodel.LoginResponse
		err := authmodel.Decode(strings.NewReader(`{"access_token":"a","refresh_token":"r","user_id":"abc","username":"nurse01"}`), "login", &resp)
		require.NoError(t, err)
		require.Equal(t, authmodel.UserID("abc"), resp.UserID)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		var resp authmodel.LoginResponse
		err := authmodel.Decode(strings.NewReader(`{"access_token":"a","user_id":1,"username":"nurse01"}`), "login", &resp)
		var de *authmodel.DecodeError
		require.True(t, errors.As(err, &de))
		require.Equal(t, "login", de.Endpoint)
		require.Equal(t, "refresh_token", de.Field)
		require.ErrorIs(t, err, authmodel.ErrMissingField)
	})

	t.Run("wrong shape", func(t *testing.T) {
		var resp authmodel.LoginResponse
		err := authmodel.Decode(strings.NewReader(`{"access_token":["a"]}`), "login", &resp)
		require.ErrorIs(t, err, authmodel.ErrInvalidJSON)
	})

	t.Run("bad user id type", func(t *testing.T) {
		var resp authmodel.LoginResponse
		err := authmodel.Decode(strings.NewReader(`{"access_token":"a","refresh_token":"r","user_id":true,"username":"x"}`), "login", &resp)
		require.ErrorIs(t, err, authmodel.ErrInvalidJSON)
	})
}

func TestRegisterRequestValidate(t *testing.T) {
	req := authmodel.RegisterRequest{FirstName: "Ann", LastName: "Lee", Username: "annlee", Email: "ann@example.com"}
	err := req.Validate()
	var de *authmodel.DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "password", de.Field)

	req.Password = "Secure#123"
	require.NoError(t, req.Validate())
}

func TestDecodeErrorMessage(t *testing.T) {
	require.Equal(t, "Invalid username or password", authmodel.DecodeErrorMessage(strings.NewReader(`{"error":"Invalid username or password"}`), "fallback"))
	require.Equal(t, "fallback", authmodel.DecodeErrorMessage(strings.NewReader(`<html>`), "fallback"))
	require.Equal(t, "fallback", authmodel.DecodeErrorMessage(strings.NewReader(`{}`), "fallback"))
}
