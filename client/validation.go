package client

import (
	"errors"
	"strings"
	"unicode"

	"github.com/jrsteele09/hospital-records/users"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// ValidateUsername applies the minimum username length before any request is sent.
// The server validates again; this only saves a round trip.
func ValidateUsername(username string) error {
	return users.ValidateUsername(username)
}

// ValidatePassword applies the composite password policy. A failure cites every rule.
func ValidatePassword(password string) error {
	return users.ValidatePasswordStrength(password)
}

func ValidateConfirmation(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// invalid reports a rejected input with its message in sentence case.
func invalid(err error) Result {
	return failure(capitalise(err.Error()))
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}
