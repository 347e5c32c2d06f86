package authmodel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/hospital-records/users"
)

// Validatable bodies check their required fields after JSON decoding.
type Validatable interface {
	Validate() error
}

// UserID accepts both string and numeric ids on the wire. Relational backends hand out
// integers while the in-memory store uses UUIDs.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// LoginRequest is the body of POST /api/auth/login. Username may also be an email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return &DecodeError{Err: fmt.Errorf("%w: username and password are required", ErrMissingField)}
	}
	return nil
}

// LoginResponse is returned from a successful login.
type LoginResponse struct {
	Message      string     `json:"message,omitempty"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	UserID       UserID     `json:"user_id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         users.Role `json:"role"`
}

func (r *LoginResponse) Validate() error {
	switch {
	case r.AccessToken == "":
		return missing("access_token")
	case r.RefreshToken == "":
		return missing("refresh_token")
	case r.UserID == "":
		return missing("user_id")
	case r.Username == "":
		return missing("username")
	}
	return nil
}

// Profile is the cacheable snapshot of the logged in user.
func (r *LoginResponse) Profile() users.Profile {
	return users.Profile{
		ID:        string(r.UserID),
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
	}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"username", r.Username},
		{"email", r.Email},
		{"password", r.Password},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
	} {
		if strings.TrimSpace(f.value) == "" {
			return missing(f.name)
		}
	}
	return nil
}

type RegisterResponse struct {
	Message  string     `json:"message"`
	UserID   UserID     `json:"user_id"`
	Username string     `json:"username"`
	Role     users.Role `json:"role"`
}

func (r *RegisterResponse) Validate() error {
	return nil
}

// RefreshResponse is returned from POST /api/auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

func (r *RefreshResponse) Validate() error {
	if r.AccessToken == "" {
		return missing("access_token")
	}
	return nil
}

// UserResponse is returned from GET /api/auth/me.
type UserResponse struct {
	UserID    UserID     `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      users.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (r *UserResponse) Validate() error {
	switch {
	case r.UserID == "":
		return missing("user_id")
	case r.Username == "":
		return missing("username")
	}
	return nil
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
