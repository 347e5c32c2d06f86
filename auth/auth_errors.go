package auth

import (
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
)

// Errors returned by the identity service. Handlers map them to HTTP statuses.
var (
	InvalidCredentialsErr  = apperrors.ErrInvalidCredentials
	UserDisabledErr        = apperrors.ErrUserDisabled
	UserExistsErr          = apperrors.ErrUserExists
	UserNotFoundErr        = apperrors.ErrUserNotFound
	InvalidRefreshTokenErr = apperrors.ErrInvalidRefreshToken
	InvalidRequestErr      = apperrors.ErrInvalidRequest
)

// RequestError is a client mistake whose message is safe to return verbatim.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return InvalidRequestErr
}

func invalidRequest(msg string) error {
	return &RequestError{Message: msg}
}
