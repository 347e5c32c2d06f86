package authmodel

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidJSON  = errors.New("invalid json")
)

// DecodeError reports a request or response body that did not match its endpoint's shape.
type DecodeError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: %s: %v", e.Endpoint, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &DecodeError{Field: field, Err: ErrMissingField}
}
