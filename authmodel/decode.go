package authmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode reads a JSON body into v and validates it. Failures are always *DecodeError.
func Decode(r io.Reader, endpoint string, v Validatable) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("%w: %v", ErrInvalidJSON, err)}
	}
	if err := v.Validate(); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Endpoint = endpoint
			return de
		}
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// DecodeErrorMessage extracts the "error" field of a failure body, falling back to def.
func DecodeErrorMessage(r io.Reader, def string) string {
	var body ErrorResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == "" {
		return def
	}
	return body.Error
}
